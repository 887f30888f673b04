package queries

import (
	"context"

	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
)

// SessionView joins a session with its recomputed tally and vote rows.
type SessionView struct {
	Session entities.VoteSession
	Tally   entities.Tally
	Votes   []entities.Vote
}

type GetSessionQuery struct {
	SessionID int64
}

type SessionByMessageQuery struct {
	MessageID int64
}

type SessionsUseCase struct {
	Sessions ports.SessionRepository
}

func (uc SessionsUseCase) Get(ctx context.Context, query GetSessionQuery) (SessionView, error) {
	if query.SessionID <= 0 {
		return SessionView{}, domainerrors.ErrSessionNotFound
	}
	session, err := uc.Sessions.GetSession(ctx, query.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	return uc.buildView(ctx, session)
}

func (uc SessionsUseCase) ByMessage(ctx context.Context, query SessionByMessageQuery) (SessionView, error) {
	if query.MessageID <= 0 {
		return SessionView{}, domainerrors.ErrSessionNotFound
	}
	session, found, err := uc.Sessions.SessionByMessage(ctx, query.MessageID)
	if err != nil {
		return SessionView{}, err
	}
	if !found {
		return SessionView{}, domainerrors.ErrSessionNotFound
	}
	return uc.buildView(ctx, session)
}

func (uc SessionsUseCase) ListOpen(ctx context.Context) ([]SessionView, error) {
	sessions, err := uc.Sessions.ListOpenSessions(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		view, err := uc.buildView(ctx, session)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc SessionsUseCase) buildView(ctx context.Context, session entities.VoteSession) (SessionView, error) {
	votes, err := uc.Sessions.ListVotes(ctx, session.ID)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{
		Session: session,
		Tally:   entities.TallyVotes(votes),
		Votes:   votes,
	}, nil
}
