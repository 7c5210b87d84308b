package registration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/regkit/regkit/pkg/ownership"
	"github.com/regkit/regkit/pkg/token"
)

// ErrInvalidTicket is returned for tickets that do not verify, belong to
// another tenant, or reference a registration that is no longer confirmed.
var ErrInvalidTicket = errors.New("invalid ticket")

// TicketService issues and verifies entry tickets for confirmed
// registrations. A ticket is a signed token carrying the registration id and
// owning tenant, rendered as a QR code for the door.
type TicketService struct {
	regs   *Service
	issuer *token.Issuer
}

// NewTicketService creates a ticket service over the registration service.
func NewTicketService(regs *Service, issuer *token.Issuer) *TicketService {
	return &TicketService{regs: regs, issuer: issuer}
}

// Issue returns a signed ticket for a confirmed registration the tenant owns.
func (t *TicketService) Issue(ctx context.Context, tenantID, regID uuid.UUID) (string, error) {
	reg, err := t.regs.Get(ctx, tenantID, regID)
	if err != nil {
		return "", err
	}
	if reg.Status != StatusConfirmed {
		return "", ErrNotConfirmed
	}
	return t.issuer.Issue(token.Principal{
		ID:       reg.ID,
		TenantID: reg.TenantID,
		Kind:     token.KindTicket,
	})
}

// IssueQR returns the ticket encoded as a PNG QR code.
func (t *TicketService) IssueQR(ctx context.Context, tenantID, regID uuid.UUID, size int) ([]byte, error) {
	raw, err := t.Issue(ctx, tenantID, regID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(raw, qrcode.Medium, size)
}

// Verify checks a presented ticket and returns its registration. The ticket
// must verify cryptographically, belong to the verifying tenant, and
// reference a registration that is still confirmed.
func (t *TicketService) Verify(ctx context.Context, tenantID uuid.UUID, raw string) (*Registration, error) {
	p, err := t.issuer.Parse(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidTicket, err)
	}
	if p.Kind != token.KindTicket || p.TenantID != tenantID {
		return nil, ErrInvalidTicket
	}

	reg, err := t.regs.Get(ctx, tenantID, p.ID)
	if err != nil {
		if errors.Is(err, ownership.ErrNotFound) {
			return nil, errors.Join(ErrInvalidTicket, err)
		}
		return nil, err
	}
	if reg.Status != StatusConfirmed {
		return nil, errors.Join(ErrInvalidTicket, ErrNotConfirmed)
	}
	return reg, nil
}
