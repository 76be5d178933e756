// Package providers isolates the assistant backend behind the Responder
// interface. The workspace service only depends on this contract, so the
// canned simulator can be swapped for a real model without touching the
// state-management layer.
package providers

import (
	"context"

	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
)

// SelectedWidget is the assistant's view of the currently selected widget,
// nil when nothing is selected.
type SelectedWidget struct {
	ID    domain.EntityID
	Type  domain.WidgetType
	Title string
}

// Reply is an assistant response: text plus the actions offered with it.
type Reply struct {
	Content string
	Actions []workspace.MessageAction
}

// Responder produces the assistant reply for one user message.
// Implementations must be safe for concurrent calls; each call corresponds to
// exactly one reply.
type Responder interface {
	Respond(ctx context.Context, prompt string, selected *SelectedWidget) (Reply, error)
}

// defaultActions returns the action set for the given selection state:
// a generic add-widget offer when nothing is selected, customize/deselect
// offers otherwise.
func defaultActions(selected *SelectedWidget) []workspace.MessageAction {
	if selected == nil {
		return []workspace.MessageAction{
			{Kind: workspace.ActionAddRiskWidget, Label: "Add risk widget"},
		}
	}
	return []workspace.MessageAction{
		{Kind: workspace.ActionCustomizeWidget, Label: "Customize"},
		{Kind: workspace.ActionDeselectWidget, Label: "Deselect"},
	}
}
