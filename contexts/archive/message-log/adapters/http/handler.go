package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/message-log/application"
	"quorum/contexts/archive/message-log/application/commands"
	"quorum/contexts/archive/message-log/application/queries"
	"quorum/contexts/archive/message-log/domain/entities"
	httptransport "quorum/contexts/archive/message-log/transport/http"
)

type Handler struct {
	Track    commands.TrackMessageUseCase
	Untrack  commands.UntrackMessageUseCase
	Messages queries.MessagesUseCase
	Logger   *slog.Logger
}

// TrackMessageHandler godoc
// @Summary Track a message
// @Description Records a posted chat message; tracking the same id twice is a no-op.
// @Tags message-log
// @Accept json
// @Produce json
// @Param request body httptransport.TrackMessageRequest true "Message payload"
// @Success 201 {object} httptransport.MessageResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /messages [post]
func (h Handler) TrackMessageHandler(ctx context.Context, req httptransport.TrackMessageRequest) (httptransport.MessageResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("track message request received",
		"event", "http_track_message_received",
		"module", "archive/message-log",
		"layer", "transport",
		"message_id", req.MessageID,
	)

	message, err := h.Track.Execute(ctx, commands.TrackMessageCommand{
		MessageID:     req.MessageID,
		ChannelID:     req.ChannelID,
		AuthorID:      req.AuthorID,
		Purpose:       entities.MessagePurpose(req.Purpose),
		Content:       req.Content,
		BuildID:       req.BuildID,
		VoteSessionID: req.VoteSessionID,
	})
	if err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Item: mapMessage(message)}, nil
}

// GetMessageHandler godoc
// @Summary Get a tracked message
// @Description Returns one tracked message by id.
// @Tags message-log
// @Accept json
// @Produce json
// @Param message_id path int true "Message id"
// @Success 200 {object} httptransport.MessageResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /messages/{message_id} [get]
func (h Handler) GetMessageHandler(ctx context.Context, messageID int64) (httptransport.MessageResponse, error) {
	message, err := h.Messages.Get(ctx, queries.GetMessageQuery{MessageID: messageID})
	if err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Item: mapMessage(message)}, nil
}

// ListMessagesHandler godoc
// @Summary List tracked messages
// @Description Returns messages marked for deletion, or the messages of one session.
// @Tags message-log
// @Accept json
// @Produce json
// @Param marked query bool false "Only messages marked for deletion"
// @Param session_id query int false "Session filter"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} httptransport.ListMessagesResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /messages [get]
func (h Handler) ListMessagesHandler(ctx context.Context, sessionID int64, marked bool, limit int) (httptransport.ListMessagesResponse, error) {
	var (
		messages []entities.Message
		err      error
	)
	if sessionID > 0 {
		messages, err = h.Messages.ListBySession(ctx, queries.ListBySessionQuery{SessionID: sessionID})
	} else if marked {
		messages, err = h.Messages.ListMarked(ctx, queries.ListMarkedQuery{Limit: limit})
	}
	if err != nil {
		return httptransport.ListMessagesResponse{}, err
	}

	items := make([]httptransport.MessageDTO, 0, len(messages))
	for _, message := range messages {
		items = append(items, mapMessage(message))
	}
	return httptransport.ListMessagesResponse{Items: items}, nil
}

// UntrackMessageHandler godoc
// @Summary Untrack a message
// @Description Removes a message from the log; the chat platform is untouched.
// @Tags message-log
// @Accept json
// @Produce json
// @Param message_id path int true "Message id"
// @Success 204 {object} nil
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /messages/{message_id} [delete]
func (h Handler) UntrackMessageHandler(ctx context.Context, messageID int64) error {
	return h.Untrack.Execute(ctx, commands.UntrackMessageCommand{MessageID: messageID})
}

func mapMessage(message entities.Message) httptransport.MessageDTO {
	dto := httptransport.MessageDTO{
		MessageID:         message.ID,
		ChannelID:         message.ChannelID,
		AuthorID:          message.AuthorID,
		Purpose:           string(message.Purpose),
		Content:           message.Content,
		BuildID:           message.BuildID,
		VoteSessionID:     message.VoteSessionID,
		MarkedForDeletion: message.MarkedForDeletion,
		TrackedAt:         message.TrackedAt.UTC().Format(time.RFC3339),
	}
	if message.MarkedAt != nil {
		dto.MarkedAt = message.MarkedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
