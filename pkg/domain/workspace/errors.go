package workspace

import "errors"

// Recoverable validation errors surfaced by workspace operations.
var (
	// ErrLastTab is returned when removing the only remaining tab; the tab
	// list is never allowed to become empty.
	ErrLastTab = errors.New("workspace: cannot remove the last tab")

	// ErrActionNotFound is returned when a message action lookup fails.
	ErrActionNotFound = errors.New("workspace: message action not found")

	// ErrNoSelection is returned when an action requires a selected widget.
	ErrNoSelection = errors.New("workspace: no widget selected")
)
