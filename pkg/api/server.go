// Package api exposes the riskdesk operation surface over REST plus a
// WebSocket event stream. It is a view-layer adapter: every handler only
// calls public service operations and every pushed frame originates from a
// bus topic.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quantora/riskdesk/pkg/app"
	"github.com/quantora/riskdesk/pkg/bus"
	"github.com/quantora/riskdesk/pkg/domain"
	"github.com/quantora/riskdesk/pkg/domain/workspace"
	"github.com/quantora/riskdesk/pkg/logger"
)

// Server is the HTTP API server for the riskdesk dashboard core.
type Server struct {
	addr      string
	apiKey    string
	container *app.Container
	hub       *WSHub
	bridge    *EventBridge
	server    *http.Server
	startTime time.Time
}

// NewServer creates the API server. An empty apiKey auto-generates a random
// session key, printed once at startup (set http.api_key or RISKDESK_API_KEY
// for a persistent key). Key generation failure is an error: the server never
// starts without an effective key.
func NewServer(addr, apiKey string, c *app.Container) (*Server, error) {
	if apiKey == "" {
		raw := make([]byte, 24)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate session API key: %w", err)
		}
		apiKey = hex.EncodeToString(raw)
		fmt.Printf("riskdesk API key (session): %s\n", apiKey)
	}
	s := &Server{
		addr:      addr,
		apiKey:    apiKey,
		container: c,
		hub:       NewWSHub(),
		startTime: time.Now(),
	}
	s.bridge = NewEventBridge(c.Bus, s.hub)
	return s, nil
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.bridge.Attach()

	mux := http.NewServeMux()
	s.routes(mux)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.InfoCF("api", "API server listening", map[string]interface{}{"addr": s.addr})
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.bridge.Detach()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.auth(s.hub.handleWS))

	mux.HandleFunc("GET /api/workspace", s.auth(s.handleWorkspace))
	mux.HandleFunc("POST /api/widgets", s.auth(s.handleAddWidget))
	mux.HandleFunc("DELETE /api/widgets/{id}", s.auth(s.handleRemoveWidget))
	mux.HandleFunc("DELETE /api/widgets/by-type/{type}", s.auth(s.handleRemoveWidgetByType))
	mux.HandleFunc("POST /api/widgets/{id}/columns", s.auth(s.handleAddColumn))
	mux.HandleFunc("POST /api/widgets/reorder", s.auth(s.handleReorder))
	mux.HandleFunc("POST /api/widgets/{id}/select", s.auth(s.handleSelect))
	mux.HandleFunc("POST /api/widgets/deselect", s.auth(s.handleDeselect))

	mux.HandleFunc("POST /api/tabs", s.auth(s.handleAddTab))
	mux.HandleFunc("POST /api/tabs/{id}/activate", s.auth(s.handleActivateTab))
	mux.HandleFunc("POST /api/tabs/{id}/rename", s.auth(s.handleRenameTab))
	mux.HandleFunc("DELETE /api/tabs/{id}", s.auth(s.handleRemoveTab))

	mux.HandleFunc("GET /api/messages", s.auth(s.handleMessages))
	mux.HandleFunc("POST /api/messages", s.auth(s.handleSendMessage))
	mux.HandleFunc("POST /api/messages/{id}/actions/{kind}", s.auth(s.handleInvokeAction))

	mux.HandleFunc("GET /api/notifications", s.auth(s.handleNotifications))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.auth(s.handleMarkRead))
	mux.HandleFunc("POST /api/notifications/{id}/click", s.auth(s.handleNotificationClick))
	mux.HandleFunc("DELETE /api/notifications", s.auth(s.handleClearNotifications))
	mux.HandleFunc("POST /api/notifications/permission", s.auth(s.handleRequestPermission))

	mux.HandleFunc("GET /api/theme", s.auth(s.handleGetTheme))
	mux.HandleFunc("POST /api/theme", s.auth(s.handleSetTheme))

	mux.HandleFunc("POST /api/reset", s.auth(s.handleReset))
}

// auth requires the API key as a bearer token or X-API-Key header.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				const prefix = "Bearer "
				if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
					key = h[len(prefix):]
				}
			}
			if key != s.apiKey {
				writeError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		next(w, r)
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"ws_clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := s.container.Workspace
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"widgets":          ws.Widgets(),
		"tabs":             ws.Tabs(),
		"activeTabId":      ws.ActiveTabID(),
		"selectedWidgetId": ws.SelectedWidgetID(),
		"isProcessing":     ws.IsProcessing(),
		"theme":            s.container.Theme.Current(),
	})
}

func (s *Server) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	widget := s.container.Workspace.AddWidgetByType(domain.WidgetType(req.Type))
	writeJSON(w, http.StatusCreated, widget)
}

func (s *Server) handleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	s.container.Workspace.RemoveWidget(domain.EntityID(r.PathValue("id")))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRemoveWidgetByType(w http.ResponseWriter, r *http.Request) {
	s.container.Workspace.RemoveWidgetByType(domain.WidgetType(r.PathValue("type")))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ColumnID string `json:"columnId"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	s.container.Workspace.AddColumnToWidget(domain.EntityID(r.PathValue("id")), req.ColumnID)
	writeJSON(w, http.StatusNoContent, nil)
}

// handleReorder moves a widget in the flat global list. Indices are global;
// a client rendering the active tab's filtered view must translate before
// calling (see bus.WidgetsReordered).
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req bus.WidgetsReordered
	if !readJSON(w, r, &req) {
		return
	}
	s.container.Workspace.ReorderWidgets(req.From, req.To)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := domain.EntityID(r.PathValue("id"))
	s.container.Workspace.SelectWidget(&id)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.container.Workspace.SelectWidget(nil)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.container.Workspace.AddWorkspaceTab())
}

func (s *Server) handleActivateTab(w http.ResponseWriter, r *http.Request) {
	s.container.Workspace.SetActiveTab(domain.EntityID(r.PathValue("id")))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRenameTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	s.container.Workspace.RenameWorkspaceTab(domain.EntityID(r.PathValue("id")), req.Name)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRemoveTab(w http.ResponseWriter, r *http.Request) {
	if err := s.container.Workspace.RemoveWorkspaceTab(domain.EntityID(r.PathValue("id"))); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Workspace.Messages())
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	s.container.Workspace.SendMessage(req.Content)
	writeJSON(w, http.StatusAccepted, nil)
}

func (s *Server) handleInvokeAction(w http.ResponseWriter, r *http.Request) {
	err := s.container.Workspace.InvokeMessageAction(
		domain.EntityID(r.PathValue("id")),
		workspace.ActionKind(r.PathValue("kind")),
	)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Notifications.Notifications())
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.container.Notifications.MarkNotificationAsRead(domain.EntityID(r.PathValue("id")))
	writeJSON(w, http.StatusNoContent, nil)
}

// handleNotificationClick publishes the clicked topic; the notification
// service's own subscription marks the entry read and opens the matching
// widget.
func (s *Server) handleNotificationClick(w http.ResponseWriter, r *http.Request) {
	s.container.Bus.Publish(bus.TopicNotificationClicked, domain.EntityID(r.PathValue("id")))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.container.Notifications.ClearAllNotifications()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRequestPermission(w http.ResponseWriter, r *http.Request) {
	state := s.container.Notifications.RequestNotificationPermission()
	writeJSON(w, http.StatusOK, map[string]string{"permission": string(state)})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": s.container.Theme.Current().String()})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	theme := domain.Theme(req.Theme)
	if !theme.Valid() {
		writeError(w, http.StatusBadRequest, "theme must be \"light\" or \"dark\"")
		return
	}
	s.container.Theme.SetTheme(theme)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.container.ResetSession()
	writeJSON(w, http.StatusNoContent, nil)
}
