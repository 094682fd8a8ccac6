package notifications

import "context"

type SendWelcomeInput struct {
	Username string
	Email    string
	UserID   int64
}

// Notifier delivers the welcome message for a freshly registered account.
// Implementations must be safe for concurrent use.
type Notifier interface {
	SendWelcome(ctx context.Context, input SendWelcomeInput) error
}
