// Package cli provides the interactive chat console, a terminal stand-in for
// the dashboard's assistant panel. It only calls public service operations
// and renders from bus subscriptions, like any other view adapter.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/quantora/riskdesk/pkg/app"
	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
)

// Console is a readline loop over the workspace chat.
type Console struct {
	container *app.Container
}

// NewConsole creates a console over the given container.
func NewConsole(c *app.Container) *Console {
	return &Console{container: c}
}

// Run blocks until the user exits (Ctrl-D or /quit).
func (c *Console) Run() error {
	rl, err := readline.New("you> ")
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	sub := c.container.Bus.Subscribe(bus.TopicNewMessage, func(payload interface{}) {
		msg, ok := payload.(workspace.Message)
		if !ok || msg.Type == workspace.MessageUser {
			return
		}
		prefix := "assistant"
		if msg.Type == workspace.MessageSystem {
			prefix = "system"
		}
		fmt.Printf("\r%s> %s\n", prefix, msg.Content)
		for _, a := range msg.Actions {
			fmt.Printf("\r  [%s] %s\n", a.Kind, a.Label)
		}
		rl.Refresh()
	})
	defer sub.Unsubscribe()

	fmt.Println("riskdesk chat — /widgets, /tabs, /notifications, /quit")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case line == "/quit":
			return nil
		case line == "/widgets":
			for _, w := range c.container.Workspace.Widgets() {
				fmt.Printf("  %s  %-26s tab=%s columns=%v\n", w.ID, w.Type, w.TabID, w.Columns)
			}
		case line == "/tabs":
			for _, t := range c.container.Workspace.Tabs() {
				marker := " "
				if t.IsActive {
					marker = "*"
				}
				fmt.Printf("  %s %s  %s\n", marker, t.ID, t.Name)
			}
		case line == "/notifications":
			for _, n := range c.container.Notifications.Notifications() {
				read := " "
				if n.Read {
					read = "r"
				}
				fmt.Printf("  [%s] %-22s %s\n", read, n.Type, n.Title)
			}
		default:
			c.container.Workspace.SendMessage(line)
		}
	}
}
