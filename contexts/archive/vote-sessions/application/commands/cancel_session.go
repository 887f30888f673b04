package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/vote-sessions/application"
	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
)

// CancelSessionCommand retires a session that will never cross a threshold,
// including the zero-vote case auto-close can never reach.
type CancelSessionCommand struct {
	SessionID   int64
	RequesterID int64
}

// CancelSessionUseCase closes the session with result cancelled. No kind side
// effect runs; cancelling an already-closed session is a no-op.
type CancelSessionUseCase struct {
	Sessions ports.SessionRepository
	Metrics  ports.Metrics
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc CancelSessionUseCase) Execute(ctx context.Context, cmd CancelSessionCommand) (entities.VoteSession, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote session cancel started",
		"event", "sessions_cancel_started",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", cmd.SessionID,
		"requester_id", cmd.RequesterID,
	)
	if cmd.SessionID <= 0 {
		return entities.VoteSession{}, domainerrors.ErrInvalidSessionInput
	}

	session, err := uc.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.VoteSession{}, err
	}
	if session.IsClosed() {
		logger.Info("vote session cancel ignored on closed session",
			"event", "sessions_cancel_ignored_closed",
			"module", "archive/vote-sessions",
			"layer", "application",
			"session_id", session.ID,
		)
		return session, nil
	}

	votes, err := uc.Sessions.ListVotes(ctx, session.ID)
	if err != nil {
		return entities.VoteSession{}, err
	}
	net := entities.TallyVotes(votes).Net

	closedAt := uc.now()
	flipped, err := uc.Sessions.CloseSession(ctx, session.ID, entities.ResultCancelled, net, closedAt)
	if err != nil {
		return entities.VoteSession{}, err
	}
	if !flipped {
		return uc.Sessions.GetSession(ctx, session.ID)
	}

	session.Status = entities.StatusClosed
	session.Result = entities.ResultCancelled
	session.ClosedAt = &closedAt
	if uc.Metrics != nil {
		uc.Metrics.SessionClosed(string(entities.ResultCancelled))
	}
	logger.Info("vote session cancelled",
		"event", "sessions_cancelled",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", session.ID,
		"requester_id", cmd.RequesterID,
	)
	return session, nil
}

func (uc CancelSessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
