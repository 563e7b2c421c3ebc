package core

import "context"

// TextGenerator is the opaque completion backend used by the answerer.
// Implementations may be slow or fail; callers bound them with a timeout.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

// Notifier pushes unsolicited text to the channels a transport owns.
type Notifier interface {
	Owns(channelID string) bool
	Notify(ctx context.Context, channelID, text string) error
}
