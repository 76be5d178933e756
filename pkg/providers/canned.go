package providers

import (
	"context"
	"fmt"
)

// CannedResponder is the default, zero-network assistant backend: a fixed
// acknowledgement whose text and offered actions depend only on whether a
// widget is selected.
type CannedResponder struct{}

// NewCannedResponder creates the canned backend.
func NewCannedResponder() *CannedResponder {
	return &CannedResponder{}
}

// Respond returns the canned acknowledgement for the prompt.
func (r *CannedResponder) Respond(_ context.Context, _ string, selected *SelectedWidget) (Reply, error) {
	if selected == nil {
		return Reply{
			Content: "I can help you manage your risk workspace. Add a widget to get started, or select one to customize it.",
			Actions: defaultActions(nil),
		}, nil
	}
	return Reply{
		Content: fmt.Sprintf("You're working with the %s widget. I can customize its columns or deselect it for you.", selected.Title),
		Actions: defaultActions(selected),
	}, nil
}

// Verify interface compliance at compile time.
var _ Responder = (*CannedResponder)(nil)
