package authority

import (
	"context"

	"github.com/dmitrijs2005/authority/internal/logging"
)

// Notifier delivers secrets minted by the store to the prospective user.
// Implementations receive copies and must not block for long: they are
// called after the store lock is released but on the caller's goroutine.
type Notifier interface {
	InvitationIssued(ctx context.Context, inv Invitation)
	ResetRequested(ctx context.Context, req ResetRequest)
}

// LogNotifier "delivers" by writing the secret to the log, which is the only
// channel available without a mail transport.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) InvitationIssued(ctx context.Context, inv Invitation) {
	n.log.Info(ctx, "invitation code issued",
		"email", inv.Email, "username", inv.Username, "code", inv.Code)
}

func (n *LogNotifier) ResetRequested(ctx context.Context, req ResetRequest) {
	n.log.Info(ctx, "one-time password issued",
		"email", req.Email, "otp", req.OneTimePassword, "expires_at", req.ExpirationTime)
}
