package commands

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	application "quorum/contexts/archive/vote-sessions/application"
	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
)

// CastVoteCommand records one user's stance. Weight arrives fully computed
// (direction times role multiplier); the engine performs no authorization.
type CastVoteCommand struct {
	SessionID int64
	UserID    int64
	Weight    float64
}

// CastVoteResult is the session view after the cast. Toggled marks a re-cast
// of the caller's current weight that removed the vote; Closed marks the cast
// that won the terminal flip.
type CastVoteResult struct {
	Session entities.VoteSession
	Tally   entities.Tally
	Votes   []entities.Vote
	Toggled bool
	Closed  bool
}

// CastVoteUseCase upserts the vote, recomputes the tally from the full vote
// set, and runs the close path when a threshold is crossed. Casts against a
// closed session return the current view untouched.
type CastVoteUseCase struct {
	Sessions ports.SessionRepository
	Builds   ports.BuildDirectory
	Messages ports.MessageDirectory
	Metrics  ports.Metrics
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote cast started",
		"event", "sessions_cast_started",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", cmd.SessionID,
		"user_id", cmd.UserID,
		"weight", cmd.Weight,
	)
	if cmd.SessionID <= 0 || cmd.UserID <= 0 {
		return CastVoteResult{}, domainerrors.ErrInvalidSessionInput
	}
	if cmd.Weight == 0 || math.IsNaN(cmd.Weight) || math.IsInf(cmd.Weight, 0) {
		return CastVoteResult{}, domainerrors.ErrInvalidWeight
	}

	session, err := uc.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if session.IsClosed() {
		logger.Info("vote cast ignored on closed session",
			"event", "sessions_cast_ignored_closed",
			"module", "archive/vote-sessions",
			"layer", "application",
			"session_id", session.ID,
			"user_id", cmd.UserID,
		)
		return uc.view(ctx, session)
	}

	weight := cmd.Weight
	toggled := false
	if current, exists, err := uc.Sessions.CurrentWeight(ctx, cmd.SessionID, cmd.UserID); err != nil {
		return CastVoteResult{}, err
	} else if exists && current == cmd.Weight {
		weight = 0
		toggled = true
	}

	if err := uc.Sessions.SetVote(ctx, cmd.SessionID, cmd.UserID, weight); err != nil {
		if errors.Is(err, domainerrors.ErrSessionClosed) {
			return uc.reloadView(ctx, cmd.SessionID)
		}
		return CastVoteResult{}, err
	}
	if uc.Metrics != nil {
		uc.Metrics.VoteCast()
	}
	logger.Info("vote recorded",
		"event", "sessions_vote_recorded",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", cmd.SessionID,
		"user_id", cmd.UserID,
		"weight", weight,
		"toggled", toggled,
	)

	votes, err := uc.Sessions.ListVotes(ctx, cmd.SessionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	tally := entities.TallyVotes(votes)
	result := CastVoteResult{Session: session, Tally: tally, Votes: votes, Toggled: toggled}

	outcome, decided := session.DecidedResult(tally, len(votes))
	if !decided {
		return result, nil
	}

	closedAt := uc.now()
	flipped, err := uc.Sessions.CloseSession(ctx, session.ID, outcome, tally.Net, closedAt)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !flipped {
		return uc.reloadView(ctx, cmd.SessionID)
	}

	session.Status = entities.StatusClosed
	session.Result = outcome
	session.ClosedAt = &closedAt
	result.Session = session
	result.Closed = true
	if uc.Metrics != nil {
		uc.Metrics.SessionClosed(string(outcome))
	}
	logger.Info("vote session closed",
		"event", "sessions_closed",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", session.ID,
		"kind", string(session.Kind),
		"result", string(outcome),
		"net", tally.Net,
	)

	if err := uc.applySideEffect(ctx, logger, session, outcome); err != nil {
		return result, err
	}
	return result, nil
}

// applySideEffect runs the kind outcome after the closure committed. A
// failure here leaves the session closed; the error surfaces to the caller
// while the closure event remains the durable trigger for recovery.
func (uc CastVoteUseCase) applySideEffect(
	ctx context.Context,
	logger *slog.Logger,
	session entities.VoteSession,
	outcome entities.SessionResult,
) error {
	var err error
	switch {
	case session.Kind == entities.KindBuildConfirmation && session.Build != nil && outcome == entities.ResultApproved:
		if uc.Builds != nil {
			err = uc.Builds.ApproveBuild(ctx, session.Build.BuildID, session.Build.Changes)
		}
	case session.Kind == entities.KindBuildConfirmation && session.Build != nil && outcome == entities.ResultDenied:
		if uc.Builds != nil {
			err = uc.Builds.DenyBuild(ctx, session.Build.BuildID)
		}
	case session.Kind == entities.KindLogDeletion && session.Deletion != nil && outcome == entities.ResultApproved:
		if uc.Messages != nil {
			err = uc.Messages.MarkMessageForDeletion(ctx, session.Deletion.TargetMessageID)
		}
	}
	if err != nil {
		logger.Error("vote session side effect failed",
			"event", "sessions_side_effect_failed",
			"module", "archive/vote-sessions",
			"layer", "application",
			"session_id", session.ID,
			"kind", string(session.Kind),
			"result", string(outcome),
			"error", err.Error(),
		)
	}
	return err
}

func (uc CastVoteUseCase) view(ctx context.Context, session entities.VoteSession) (CastVoteResult, error) {
	votes, err := uc.Sessions.ListVotes(ctx, session.ID)
	if err != nil {
		return CastVoteResult{}, err
	}
	return CastVoteResult{
		Session: session,
		Tally:   entities.TallyVotes(votes),
		Votes:   votes,
	}, nil
}

func (uc CastVoteUseCase) reloadView(ctx context.Context, sessionID int64) (CastVoteResult, error) {
	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	return uc.view(ctx, session)
}

func (uc CastVoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
