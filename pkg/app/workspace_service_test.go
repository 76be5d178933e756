package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/infrastructure/persistence"
	"github.com/quantora/riskdesk/pkg/providers"
)

func newTestWorkspace(t *testing.T) (*bus.Bus, *WorkspaceService) {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir())
	require.NoError(t, err)

	b := bus.New()
	ws := NewWorkspaceService(b, store, providers.NewCannedResponder(), 0)
	return b, ws
}

func TestHydrateDefaults(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)

	tabs := ws.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Overview", tabs[0].Name)
	assert.True(t, tabs[0].IsActive)
	assert.Equal(t, tabs[0].ID, ws.ActiveTabID())
	assert.Empty(t, ws.Widgets())
	assert.Empty(t, ws.Messages())
	assert.False(t, ws.IsProcessing())
}

func TestAddWidgetByType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		widgetType domain.WidgetType
		wantTitle  string
	}{
		{"known type", domain.WidgetRiskExposure, "Risk Exposure"},
		{"another known type", domain.WidgetVarTrend, "VaR Trend"},
		{"unknown type falls back", domain.WidgetType("mystery"), "Widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, ws := newTestWorkspace(t)
			var published []bus.Topic
			b.Subscribe(bus.TopicWidgetsChanged, func(interface{}) { published = append(published, bus.TopicWidgetsChanged) })
			b.Subscribe(bus.TopicAddWidget, func(interface{}) { published = append(published, bus.TopicAddWidget) })

			w := ws.AddWidgetByType(tt.widgetType)

			assert.Equal(t, tt.wantTitle, w.Title)
			assert.Equal(t, ws.ActiveTabID(), w.TabID)
			assert.Empty(t, w.Columns)
			// collection topic first, then the fine-grained event
			assert.Equal(t, []bus.Topic{bus.TopicWidgetsChanged, bus.TopicAddWidget}, published)
		})
	}
}

func TestWidgetInvariantsAcrossMutations(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)

	w1 := ws.AddWidgetByType(domain.WidgetRiskExposure)
	ws.AddWorkspaceTab()
	ws.AddWidgetByType(domain.WidgetVarTrend)
	ws.AddWidgetByType(domain.WidgetMarketHeatmap)
	ws.RemoveWidget(w1.ID)
	ws.AddWidgetByType(domain.WidgetRiskExposure)

	tabs := ws.Tabs()
	tabIDs := make(map[domain.EntityID]bool, len(tabs))
	for _, tab := range tabs {
		tabIDs[tab.ID] = true
	}

	seen := make(map[domain.EntityID]bool)
	for _, w := range ws.Widgets() {
		assert.False(t, seen[w.ID], "duplicate widget id %s", w.ID)
		seen[w.ID] = true
		assert.True(t, tabIDs[w.TabID], "widget %s references missing tab %s", w.ID, w.TabID)
	}
}

func TestRemoveWidgetAbsentIsNoop(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)
	ws.AddWidgetByType(domain.WidgetRiskExposure)

	published := 0
	b.Subscribe(bus.TopicWidgetsChanged, func(interface{}) { published++ })

	ws.RemoveWidget(domain.NewID())

	assert.Zero(t, published)
	assert.Len(t, ws.Widgets(), 1)
}

func TestRemoveSelectedWidgetDeselects(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)
	w := ws.AddWidgetByType(domain.WidgetRiskExposure)
	ws.SelectWidget(&w.ID)
	require.NotNil(t, ws.SelectedWidgetID())

	var deselected bool
	b.Subscribe(bus.TopicSelectWidget, func(payload interface{}) {
		id, ok := payload.(*domain.EntityID)
		require.True(t, ok)
		deselected = id == nil
	})

	ws.RemoveWidget(w.ID)

	assert.Nil(t, ws.SelectedWidgetID())
	assert.True(t, deselected)
}

func TestRemoveWidgetByTypeSpansAllTabs(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	ws.AddWidgetByType(domain.WidgetVarTrend)
	ws.AddWorkspaceTab()
	ws.AddWidgetByType(domain.WidgetVarTrend)
	keep := ws.AddWidgetByType(domain.WidgetRiskExposure)

	ws.RemoveWidgetByType(domain.WidgetVarTrend)

	widgets := ws.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, keep.ID, widgets[0].ID)
}

func TestAddColumnToWidgetKeepsDuplicatesInOrder(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	w := ws.AddWidgetByType(domain.WidgetRiskExposure)

	ws.AddColumnToWidget(w.ID, "notional")
	ws.AddColumnToWidget(w.ID, "var_95")
	ws.AddColumnToWidget(w.ID, "notional")
	ws.AddColumnToWidget(domain.NewID(), "ignored")

	widgets := ws.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, []string{"notional", "var_95", "notional"}, widgets[0].Columns)
}

func TestReorderWidgets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		from, to  int
		wantOrder []int // indices into the original creation order
	}{
		{"forward", 0, 2, []int{1, 2, 0}},
		{"backward", 2, 0, []int{2, 0, 1}},
		{"same index noop", 1, 1, []int{0, 1, 2}},
		{"out of range noop", 0, 5, []int{0, 1, 2}},
		{"negative noop", -1, 0, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ws := newTestWorkspace(t)
			created := []workspace.Widget{
				ws.AddWidgetByType(domain.WidgetRiskExposure),
				ws.AddWidgetByType(domain.WidgetVarTrend),
				ws.AddWidgetByType(domain.WidgetMarketHeatmap),
			}

			ws.ReorderWidgets(tt.from, tt.to)

			widgets := ws.Widgets()
			require.Len(t, widgets, len(tt.wantOrder))
			for i, orig := range tt.wantOrder {
				assert.Equal(t, created[orig].ID, widgets[i].ID, "position %d", i)
			}
		})
	}
}

func TestAddWorkspaceTabNamingAndActivation(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)

	tab2 := ws.AddWorkspaceTab()
	assert.Equal(t, "Tab 2", tab2.Name)
	assert.Equal(t, tab2.ID, ws.ActiveTabID())

	tab3 := ws.AddWorkspaceTab()
	assert.Equal(t, "Tab 3", tab3.Name)

	active := 0
	for _, tab := range ws.Tabs() {
		if tab.IsActive {
			active++
			assert.Equal(t, ws.ActiveTabID(), tab.ID)
		}
	}
	assert.Equal(t, 1, active, "exactly one tab must be active")
}

func TestSetActiveTab(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)
	first := ws.Tabs()[0]
	second := ws.AddWorkspaceTab()

	changes := 0
	b.Subscribe(bus.TopicActiveTabChanged, func(interface{}) { changes++ })

	ws.SetActiveTab(second.ID) // already active — no-op
	assert.Zero(t, changes)

	ws.SetActiveTab(first.ID)
	assert.Equal(t, first.ID, ws.ActiveTabID())
	assert.Equal(t, 1, changes)

	ws.SetActiveTab(domain.NewID()) // unknown — no-op
	assert.Equal(t, first.ID, ws.ActiveTabID())
	assert.Equal(t, 1, changes)
}

func TestRemoveLastTabIsRefused(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	only := ws.Tabs()[0]

	err := ws.RemoveWorkspaceTab(only.ID)

	require.ErrorIs(t, err, workspace.ErrLastTab)
	assert.Len(t, ws.Tabs(), 1)
}

// Scenario from the dashboard's core flow: add a tab, place a widget on it,
// remove the tab — the widget cascades and the original tab reactivates.
func TestRemoveTabCascadesAndReactivates(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)
	overview := ws.Tabs()[0]
	tab2 := ws.AddWorkspaceTab()
	w := ws.AddWidgetByType(domain.WidgetRiskExposure)
	require.Equal(t, tab2.ID, w.TabID)

	var order []bus.Topic
	for _, topic := range []bus.Topic{bus.TopicTabsChanged, bus.TopicWidgetsChanged, bus.TopicActiveTabChanged, bus.TopicRemoveTab} {
		tpc := topic
		b.Subscribe(tpc, func(interface{}) { order = append(order, tpc) })
	}

	require.NoError(t, ws.RemoveWorkspaceTab(tab2.ID))

	tabs := ws.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, overview.ID, tabs[0].ID)
	assert.True(t, tabs[0].IsActive)
	assert.Equal(t, overview.ID, ws.ActiveTabID())
	assert.Empty(t, ws.Widgets())
	assert.Equal(t, []bus.Topic{bus.TopicTabsChanged, bus.TopicWidgetsChanged, bus.TopicActiveTabChanged, bus.TopicRemoveTab}, order)
}

func TestRemoveActiveTabPrefersSamePosition(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	ws.AddWorkspaceTab() // Tab 2
	tab3 := ws.AddWorkspaceTab()
	ws.AddWorkspaceTab() // Tab 4

	ws.SetActiveTab(tab3.ID)
	require.NoError(t, ws.RemoveWorkspaceTab(tab3.ID))

	// Tab 4 now occupies tab3's old position and becomes active.
	tabs := ws.Tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, "Tab 4", tabs[2].Name)
	assert.Equal(t, tabs[2].ID, ws.ActiveTabID())
}

func TestRemoveActiveLastPositionFallsBack(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	tab2 := ws.AddWorkspaceTab()

	require.NoError(t, ws.RemoveWorkspaceTab(tab2.ID))

	tabs := ws.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, tabs[0].ID, ws.ActiveTabID())
}

func TestRenameWorkspaceTab(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		newName  string
		wantName string
	}{
		{"plain rename", "Credit Risk", "Credit Risk"},
		{"whitespace trimmed", "  Market Risk  ", "Market Risk"},
		{"empty is noop", "", "Overview"},
		{"whitespace only is noop", "   ", "Overview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ws := newTestWorkspace(t)
			tab := ws.Tabs()[0]

			ws.RenameWorkspaceTab(tab.ID, tt.newName)

			assert.Equal(t, tt.wantName, ws.Tabs()[0].Name)
		})
	}
}

func TestSelectWidgetSurfacesSystemMessage(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)
	w := ws.AddWidgetByType(domain.WidgetVarTrend)

	var newMessages []workspace.Message
	b.Subscribe(bus.TopicNewMessage, func(payload interface{}) {
		newMessages = append(newMessages, payload.(workspace.Message))
	})

	ws.SelectWidget(&w.ID)

	require.NotNil(t, ws.SelectedWidgetID())
	assert.Equal(t, w.ID, *ws.SelectedWidgetID())
	require.Len(t, newMessages, 1)
	assert.Equal(t, workspace.MessageSystem, newMessages[0].Type)
	assert.Contains(t, newMessages[0].Content, "VaR Trend")
}

func TestSelectUnknownWidgetIsNoop(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	id := domain.NewID()

	ws.SelectWidget(&id)

	assert.Nil(t, ws.SelectedWidgetID())
	assert.Empty(t, ws.Messages())
}

func TestSendMessageBlankIsNoop(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "   ", "\t\n"} {
		b, ws := newTestWorkspace(t)
		processingChanges := 0
		b.Subscribe(bus.TopicProcessingStateChanged, func(interface{}) { processingChanges++ })

		ws.SendMessage(content)

		assert.Empty(t, ws.Messages(), "content %q", content)
		assert.Zero(t, processingChanges, "content %q", content)
	}
}

// stateRecorder collects processing-state publishes; the falling edge arrives
// on the reply timer's goroutine.
type stateRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *stateRecorder) record(payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, payload.(bool))
}

func (r *stateRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

func TestSendMessageWithoutSelection(t *testing.T) {
	t.Parallel()

	b, ws := newTestWorkspace(t)

	rec := &stateRecorder{}
	b.Subscribe(bus.TopicProcessingStateChanged, rec.record)

	ws.SendMessage("hello")

	require.Eventually(t, func() bool { return !ws.IsProcessing() && len(ws.Messages()) == 2 },
		time.Second, 5*time.Millisecond)

	messages := ws.Messages()
	assert.Equal(t, workspace.MessageUser, messages[0].Type)
	assert.Equal(t, "hello", messages[0].Content)

	reply := messages[1]
	assert.Equal(t, workspace.MessageAI, reply.Type)
	require.Len(t, reply.Actions, 1)
	assert.Equal(t, workspace.ActionAddRiskWidget, reply.Actions[0].Kind)
	assert.Equal(t, "Add risk widget", reply.Actions[0].Label)

	assert.Equal(t, []bool{true, false}, rec.snapshot())
}

func TestSendMessageWithSelectionOffersWidgetActions(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	w := ws.AddWidgetByType(domain.WidgetMarketHeatmap)
	ws.SelectWidget(&w.ID)

	ws.SendMessage("what is this?")

	require.Eventually(t, func() bool { return !ws.IsProcessing() && len(ws.Messages()) == 3 },
		time.Second, 5*time.Millisecond)

	reply := ws.Messages()[2]
	assert.Equal(t, workspace.MessageAI, reply.Type)
	assert.Contains(t, reply.Content, "Market Heatmap")
	require.Len(t, reply.Actions, 2)
	assert.Equal(t, workspace.ActionCustomizeWidget, reply.Actions[0].Kind)
	assert.Equal(t, workspace.ActionDeselectWidget, reply.Actions[1].Kind)
}

func TestDeselectDuringLatencyYieldsGenericReply(t *testing.T) {
	t.Parallel()

	store, err := persistence.NewFileStore(t.TempDir())
	require.NoError(t, err)
	b := bus.New()
	// non-zero delay so the deselect lands before the reply is produced
	ws := NewWorkspaceService(b, store, providers.NewCannedResponder(), 50*time.Millisecond)

	w := ws.AddWidgetByType(domain.WidgetMarketHeatmap)
	ws.SelectWidget(&w.ID)
	ws.SendMessage("what is this?")
	ws.SelectWidget(nil)

	require.Eventually(t, func() bool { return !ws.IsProcessing() && len(ws.Messages()) == 3 },
		time.Second, 5*time.Millisecond)

	reply := ws.Messages()[2]
	assert.Equal(t, workspace.MessageAI, reply.Type)
	assert.NotContains(t, reply.Content, "Market Heatmap")
	require.Len(t, reply.Actions, 1)
	assert.Equal(t, workspace.ActionAddRiskWidget, reply.Actions[0].Kind)
}

func TestOverlappingSendsKeepProcessingUntilAllResolve(t *testing.T) {
	t.Parallel()

	store, err := persistence.NewFileStore(t.TempDir())
	require.NoError(t, err)
	b := bus.New()
	// non-zero delay so both sends are in flight together
	ws := NewWorkspaceService(b, store, providers.NewCannedResponder(), 50*time.Millisecond)

	rec := &stateRecorder{}
	b.Subscribe(bus.TopicProcessingStateChanged, rec.record)

	ws.SendMessage("first")
	ws.SendMessage("second")

	require.Eventually(t, func() bool { return !ws.IsProcessing() && len(ws.Messages()) == 4 },
		time.Second, 5*time.Millisecond)

	// one rising edge, one falling edge — never false between the replies
	assert.Equal(t, []bool{true, false}, rec.snapshot())
}

func TestInvokeMessageAction(t *testing.T) {
	t.Parallel()

	_, ws := newTestWorkspace(t)
	ws.SendMessage("hi")
	require.Eventually(t, func() bool { return len(ws.Messages()) == 2 }, time.Second, 5*time.Millisecond)

	reply := ws.Messages()[1]
	require.NoError(t, ws.InvokeMessageAction(reply.ID, workspace.ActionAddRiskWidget))

	widgets := ws.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, domain.WidgetRiskExposure, widgets[0].Type)

	err := ws.InvokeMessageAction(reply.ID, workspace.ActionDeselectWidget)
	assert.ErrorIs(t, err, workspace.ErrActionNotFound)
}
