package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/repository"
)

// SessionsHandler handles playback session history endpoints.
type SessionsHandler struct {
	sessions repository.SessionRepository
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sessions repository.SessionRepository) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// ListSessionsInput is the input for the session list endpoint.
type ListSessionsInput struct {
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Maximum number of sessions to return"`
	ItemID string `query:"item_id" doc:"Filter by media server item ID"`
}

// ListSessionsOutput is the output for the session list endpoint.
type ListSessionsOutput struct {
	Body struct {
		Sessions []*models.PlaybackSession `json:"sessions"`
		Total    int64                     `json:"total"`
	}
}

// GetSessionInput is the input for the single-session endpoint.
type GetSessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// GetSessionOutput is the output for the single-session endpoint.
type GetSessionOutput struct {
	Body models.PlaybackSession
}

// Register registers the session routes with the API.
func (h *SessionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listSessions",
		Method:      "GET",
		Path:        "/api/v1/sessions",
		Summary:     "List playback sessions",
		Description: "Returns recorded playback decisions, newest first",
		Tags:        []string{"Sessions"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getSession",
		Method:      "GET",
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get a playback session",
		Tags:        []string{"Sessions"},
	}, h.Get)
}

// List returns recent playback sessions, optionally filtered by item.
func (h *SessionsHandler) List(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	out := &ListSessionsOutput{}

	var (
		sessions []*models.PlaybackSession
		err      error
	)
	if input.ItemID != "" {
		sessions, err = h.sessions.GetByItemID(ctx, input.ItemID)
		if err == nil && len(sessions) > input.Limit {
			sessions = sessions[:input.Limit]
		}
	} else {
		sessions, err = h.sessions.GetRecent(ctx, input.Limit)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list sessions", err)
	}

	total, err := h.sessions.Count(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count sessions", err)
	}

	if sessions == nil {
		sessions = []*models.PlaybackSession{}
	}
	out.Body.Sessions = sessions
	out.Body.Total = total
	return out, nil
}

// Get returns a single playback session by ID.
func (h *SessionsHandler) Get(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	session, err := h.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get session", err)
	}
	if session == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("session %s not found", input.ID))
	}

	return &GetSessionOutput{Body: *session}, nil
}
