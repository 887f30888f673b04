package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/vote-sessions/application"
	"quorum/contexts/archive/vote-sessions/application/commands"
	"quorum/contexts/archive/vote-sessions/application/queries"
	"quorum/contexts/archive/vote-sessions/domain/entities"
	httptransport "quorum/contexts/archive/vote-sessions/transport/http"
)

type Handler struct {
	Create   commands.CreateSessionUseCase
	Cast     commands.CastVoteUseCase
	Cancel   commands.CancelSessionUseCase
	Sessions queries.SessionsUseCase
	Logger   *slog.Logger
}

// CreateSessionHandler godoc
// @Summary Open a vote session
// @Description Opens a weighted vote session for a build confirmation or a log deletion.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Param request body httptransport.CreateSessionRequest true "Session payload"
// @Success 201 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions [post]
func (h Handler) CreateSessionHandler(ctx context.Context, req httptransport.CreateSessionRequest) (httptransport.SessionResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("vote session creation request received",
		"event", "http_create_session_received",
		"module", "archive/vote-sessions",
		"layer", "transport",
		"kind", req.Kind,
		"author_id", req.AuthorID,
	)

	cmd := commands.CreateSessionCommand{
		Kind:          entities.SessionKind(req.Kind),
		AuthorID:      req.AuthorID,
		PassThreshold: req.PassThreshold,
		FailThreshold: req.FailThreshold,
		MessageIDs:    req.MessageIDs,
	}
	if req.Build != nil {
		cmd.Build = &entities.BuildConfirmation{
			BuildID: req.Build.BuildID,
			Changes: mapChangesIn(req.Build.Changes),
		}
	}
	if req.Deletion != nil {
		cmd.Deletion = &entities.LogDeletion{
			TargetMessageID: req.Deletion.TargetMessageID,
			TargetChannelID: req.Deletion.TargetChannelID,
		}
	}

	session, err := h.Create.Execute(ctx, cmd)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// GetSessionHandler godoc
// @Summary Get a vote session
// @Description Returns one session with its recomputed tally and vote rows.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Param session_id path int true "Session id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions/{session_id} [get]
func (h Handler) GetSessionHandler(ctx context.Context, sessionID int64) (httptransport.SessionResponse, error) {
	view, err := h.Sessions.Get(ctx, queries.GetSessionQuery{SessionID: sessionID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapView(view), nil
}

// SessionByMessageHandler godoc
// @Summary Resolve a session by ballot message
// @Description Returns the session a tracked ballot message belongs to.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Param message_id query int true "Ballot message id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions [get]
func (h Handler) SessionByMessageHandler(ctx context.Context, messageID int64) (httptransport.SessionResponse, error) {
	view, err := h.Sessions.ByMessage(ctx, queries.SessionByMessageQuery{MessageID: messageID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapView(view), nil
}

// ListOpenSessionsHandler godoc
// @Summary List open vote sessions
// @Description Returns every open session with its current tally.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Success 200 {object} httptransport.ListSessionsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions [get]
func (h Handler) ListOpenSessionsHandler(ctx context.Context) (httptransport.ListSessionsResponse, error) {
	views, err := h.Sessions.ListOpen(ctx)
	if err != nil {
		return httptransport.ListSessionsResponse{}, err
	}
	items := make([]httptransport.SessionResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapView(view))
	}
	return httptransport.ListSessionsResponse{Items: items}, nil
}

// CastVoteHandler godoc
// @Summary Cast a vote
// @Description Casts a weighted vote; re-casting the same weight toggles it off. Crossing a threshold closes the session.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Param session_id path int true "Session id"
// @Param request body httptransport.CastVoteRequest true "Vote payload"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions/{session_id}/votes [post]
func (h Handler) CastVoteHandler(ctx context.Context, sessionID int64, req httptransport.CastVoteRequest) (httptransport.CastVoteResponse, error) {
	result, err := h.Cast.Execute(ctx, commands.CastVoteCommand{
		SessionID: sessionID,
		UserID:    req.UserID,
		Weight:    req.Weight,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Item:    mapSession(result.Session),
		Tally:   mapTally(result.Tally),
		Toggled: result.Toggled,
		Closed:  result.Closed,
	}, nil
}

// CancelSessionHandler godoc
// @Summary Cancel a vote session
// @Description Closes an open session with result cancelled, skipping side effects.
// @Tags vote-sessions
// @Accept json
// @Produce json
// @Param session_id path int true "Session id"
// @Param request body httptransport.CancelSessionRequest true "Cancel payload"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /vote-sessions/{session_id}/cancel [post]
func (h Handler) CancelSessionHandler(ctx context.Context, sessionID int64, req httptransport.CancelSessionRequest) (httptransport.SessionResponse, error) {
	session, err := h.Cancel.Execute(ctx, commands.CancelSessionCommand{
		SessionID:   sessionID,
		RequesterID: req.RequesterID,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

func mapView(view queries.SessionView) httptransport.SessionResponse {
	votes := make([]httptransport.VoteDTO, 0, len(view.Votes))
	for _, vote := range view.Votes {
		votes = append(votes, httptransport.VoteDTO{
			UserID: vote.UserID,
			Weight: vote.Weight,
		})
	}
	return httptransport.SessionResponse{
		Item:  mapSession(view.Session),
		Tally: mapTally(view.Tally),
		Votes: votes,
	}
}

func mapSession(session entities.VoteSession) httptransport.SessionDTO {
	dto := httptransport.SessionDTO{
		SessionID:     session.ID,
		Kind:          string(session.Kind),
		AuthorID:      session.AuthorID,
		PassThreshold: session.PassThreshold,
		FailThreshold: session.FailThreshold,
		Status:        string(session.Status),
		Result:        string(session.Result),
		MessageIDs:    session.MessageIDs,
		CreatedAt:     session.CreatedAt.UTC().Format(time.RFC3339),
	}
	if session.Build != nil {
		dto.Build = &httptransport.BuildConfirmationDTO{
			BuildID: session.Build.BuildID,
			Changes: mapChangesOut(session.Build.Changes),
		}
	}
	if session.Deletion != nil {
		dto.Deletion = &httptransport.LogDeletionDTO{
			TargetMessageID: session.Deletion.TargetMessageID,
			TargetChannelID: session.Deletion.TargetChannelID,
		}
	}
	if session.ClosedAt != nil {
		dto.ClosedAt = session.ClosedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func mapTally(tally entities.Tally) httptransport.TallyDTO {
	return httptransport.TallyDTO{
		Upvotes:   tally.Upvotes,
		Downvotes: tally.Downvotes,
		Net:       tally.Net,
	}
}

func mapChangesIn(changes []httptransport.ChangeDTO) []entities.Change {
	if len(changes) == 0 {
		return nil
	}
	mapped := make([]entities.Change, 0, len(changes))
	for _, change := range changes {
		mapped = append(mapped, entities.Change{
			Field: change.Field,
			From:  change.From,
			To:    change.To,
		})
	}
	return mapped
}

func mapChangesOut(changes []entities.Change) []httptransport.ChangeDTO {
	if len(changes) == 0 {
		return nil
	}
	mapped := make([]httptransport.ChangeDTO, 0, len(changes))
	for _, change := range changes {
		mapped = append(mapped, httptransport.ChangeDTO{
			Field: change.Field,
			From:  change.From,
			To:    change.To,
		})
	}
	return mapped
}
