package registration_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regkit/regkit/pkg/token"
	"github.com/regkit/regkit/svc/registration"
)

func newTicketFixture(t *testing.T) (*registration.TicketService, *fixture) {
	t.Helper()
	f := newFixture(t)
	issuer, err := token.NewIssuer("test-secret", token.WithIssuer("regkit-test"))
	require.NoError(t, err)
	return registration.NewTicketService(f.svc, issuer), f
}

func TestTicketService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issue and verify round trip", func(t *testing.T) {
		t.Parallel()
		tickets, f := newTicketFixture(t)
		tid := uuid.New()
		ev := approvedEvent(tid, nil)
		f.events.add(ev)

		reg, err := f.svc.Register(ctx, tid, ev.ID, registration.RegisterInput{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		raw, err := tickets.Issue(ctx, tid, reg.ID)
		require.NoError(t, err)
		require.NotEmpty(t, raw)

		got, err := tickets.Verify(ctx, tid, raw)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, got.ID)
	})

	t.Run("waitlisted registration gets no ticket", func(t *testing.T) {
		t.Parallel()
		tickets, f := newTicketFixture(t)
		tid := uuid.New()
		ev := approvedEvent(tid, limit(1))
		f.events.add(ev)

		in := registration.RegisterInput{Name: "Ada", Email: "ada@example.com"}
		_, err := f.svc.Register(ctx, tid, ev.ID, in)
		require.NoError(t, err)
		waitlisted, err := f.svc.Register(ctx, tid, ev.ID, in)
		require.NoError(t, err)

		_, err = tickets.Issue(ctx, tid, waitlisted.ID)
		assert.ErrorIs(t, err, registration.ErrNotConfirmed)
	})

	t.Run("ticket does not verify for another tenant", func(t *testing.T) {
		t.Parallel()
		tickets, f := newTicketFixture(t)
		tid := uuid.New()
		ev := approvedEvent(tid, nil)
		f.events.add(ev)

		reg, err := f.svc.Register(ctx, tid, ev.ID, registration.RegisterInput{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)
		raw, err := tickets.Issue(ctx, tid, reg.ID)
		require.NoError(t, err)

		_, err = tickets.Verify(ctx, uuid.New(), raw)
		assert.ErrorIs(t, err, registration.ErrInvalidTicket)
	})

	t.Run("cancelled registration invalidates the ticket", func(t *testing.T) {
		t.Parallel()
		tickets, f := newTicketFixture(t)
		tid := uuid.New()
		ev := approvedEvent(tid, nil)
		f.events.add(ev)

		reg, err := f.svc.Register(ctx, tid, ev.ID, registration.RegisterInput{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)
		raw, err := tickets.Issue(ctx, tid, reg.ID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, tid, reg.ID)
		require.NoError(t, err)

		_, err = tickets.Verify(ctx, tid, raw)
		assert.ErrorIs(t, err, registration.ErrInvalidTicket)
	})

	t.Run("garbage does not verify", func(t *testing.T) {
		t.Parallel()
		tickets, _ := newTicketFixture(t)
		_, err := tickets.Verify(ctx, uuid.New(), "not-a-token")
		assert.ErrorIs(t, err, registration.ErrInvalidTicket)
	})

	t.Run("qr encodes the ticket", func(t *testing.T) {
		t.Parallel()
		tickets, f := newTicketFixture(t)
		tid := uuid.New()
		ev := approvedEvent(tid, nil)
		f.events.add(ev)

		reg, err := f.svc.Register(ctx, tid, ev.ID, registration.RegisterInput{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		png, err := tickets.IssueQR(ctx, tid, reg.ID, 256)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})
}
