package ports

import (
	"context"
	"time"

	"quorum/contexts/archive/vote-sessions/domain/entities"
)

// SessionRepository persists sessions, their kind payloads, message links,
// and votes. SetVote and CloseSession carry the concurrency contract: SetVote
// checks the session is still open inside its transaction (ErrSessionClosed
// otherwise) and treats weight zero as row removal; CloseSession is a
// conditional open-to-closed flip that appends the closure event in the same
// transaction and reports whether this call won the flip.
type SessionRepository interface {
	CreateSession(ctx context.Context, session entities.VoteSession) (entities.VoteSession, error)
	GetSession(ctx context.Context, sessionID int64) (entities.VoteSession, error)
	SessionByMessage(ctx context.Context, messageID int64) (entities.VoteSession, bool, error)
	ListOpenSessions(ctx context.Context) ([]entities.VoteSession, error)
	CurrentWeight(ctx context.Context, sessionID int64, userID int64) (float64, bool, error)
	SetVote(ctx context.Context, sessionID int64, userID int64, weight float64) error
	ListVotes(ctx context.Context, sessionID int64) ([]entities.Vote, error)
	CloseSession(ctx context.Context, sessionID int64, result entities.SessionResult, net float64, closedAt time.Time) (bool, error)
}

// BuildDirectory is the outbound seam to the build registry, invoked after a
// build confirmation session closes.
type BuildDirectory interface {
	ApproveBuild(ctx context.Context, buildID int64, changes []entities.Change) error
	DenyBuild(ctx context.Context, buildID int64) error
}

// MessageDirectory is the outbound seam to the message log, invoked after an
// approved log deletion.
type MessageDirectory interface {
	MarkMessageForDeletion(ctx context.Context, messageID int64) error
}

type Metrics interface {
	VoteCast()
	SessionClosed(result string)
}

type Clock interface {
	Now() time.Time
}
