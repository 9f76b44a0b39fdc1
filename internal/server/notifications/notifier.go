// Package notifications defines the outbound notification interface consumed
// by the lifecycle machinery. Actual email delivery is an external
// collaborator; the in-repo implementation only logs.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/postscript/internal/logging"
)

// ReleaseEvent describes a completed asset release for one user. Bundle
// links point at the still-encrypted release bundle; decryption remains
// impossible without the caller's secret share.
type ReleaseEvent struct {
	UserID          string
	UserEmail       string
	RecipientEmails []string
	BundleURL       string
}

// Notifier receives lifecycle events. Implementations must not block the
// sweep for longer than a single delivery attempt.
type Notifier interface {
	// NotifyCountdownStarted warns the user that the grace period has begun.
	NotifyCountdownStarted(ctx context.Context, userID, email string) error

	// NotifyReleased informs recipients that a release happened.
	NotifyReleased(ctx context.Context, event *ReleaseEvent) error
}

// LogNotifier writes events to the structured log instead of sending mail.
// Used in development and as the default until a mail collaborator is wired.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notifier")}
}

func (n *LogNotifier) NotifyCountdownStarted(ctx context.Context, userID, email string) error {
	n.logger.Info(ctx, "countdown started", "user_id", userID)
	return nil
}

func (n *LogNotifier) NotifyReleased(ctx context.Context, event *ReleaseEvent) error {
	n.logger.Info(ctx, "release triggered",
		"user_id", event.UserID,
		"recipients", len(event.RecipientEmails),
		"bundle", event.BundleURL != "")
	return nil
}
