package ports

import (
	"context"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Prompter asks the user for synchronous confirmation before a mutation.
type Prompter interface {
	// PromptText asks for free text. ok is false when the user cancels.
	PromptText(ctx context.Context, message, defaultValue string) (text string, ok bool)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string) bool
}

// Presenter shows read-only information and notices to the user.
type Presenter interface {
	// ShowNodeInfo displays the details of a device.
	ShowNodeInfo(ctx context.Context, node domain.Node)

	// ShowDocument displays an external document (the device-type form) in a modal.
	ShowDocument(ctx context.Context, document string)

	// Notify reports a recoverable problem, such as a failed catalog fetch.
	Notify(ctx context.Context, message string)
}
