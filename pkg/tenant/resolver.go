package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxIdentifierLength keeps identifiers DNS-compatible and bounds
	// attacker-supplied input.
	MaxIdentifierLength = 63

	// DefaultHeaderName is used by NewHeaderResolver when no header is given.
	DefaultHeaderName = "X-Tenant-ID"
)

// identifierPattern allows DNS-safe labels: alphanumeric start, hyphens after.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Resolver extracts a tenant identifier from an HTTP request. It returns an
// empty string when the request carries no identifier, and an error only
// when extraction itself fails.
type Resolver func(r *http.Request) (string, error)

func isValidIdentifier(id string) bool {
	return id != "" && len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// NewHeaderResolver extracts the tenant identifier from an HTTP header,
// defaulting to X-Tenant-ID.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = DefaultHeaderName
	}

	return func(req *http.Request) (string, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return "", nil
		}
		if !isValidIdentifier(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewSubdomainResolver extracts the routing key from the request's
// subdomain, optionally stripping a configured suffix such as ".events.com".
// The base domain and a bare "www" yield no identifier.
func NewSubdomainResolver(suffix string) Resolver {
	return func(req *http.Request) (string, error) {
		host := req.Host
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}

		originalParts := strings.Split(host, ".")

		if suffix != "" && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			host = host[:len(host)-len(suffix)]
		}

		parts := strings.Split(host, ".")
		if len(parts) == 0 || parts[0] == "" {
			return "", nil
		}

		subdomain := parts[0]
		if subdomain == "www" {
			if len(parts) < 2 {
				return "", nil
			}
			subdomain = parts[1]
		}

		// A real subdomain needs at least subdomain.domain.tld.
		if len(originalParts) < 3 {
			return "", nil
		}

		subdomain = strings.TrimSpace(subdomain)
		if subdomain == "" {
			return "", nil
		}
		if !isValidIdentifier(subdomain) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, subdomain)
		}
		return subdomain, nil
	}
}

// NewCompositeResolver tries resolvers in order and returns the first
// non-empty identifier. Errors are collected and only surfaced when no
// resolver produced an identifier.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error

		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}

		if len(errs) > 0 {
			return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
		}
		return "", nil
	}
}
