package entities

import "time"

type SessionKind string

const (
	KindBuildConfirmation SessionKind = "build_confirmation"
	KindLogDeletion       SessionKind = "log_deletion"
)

type SessionStatus string

const (
	StatusOpen   SessionStatus = "open"
	StatusClosed SessionStatus = "closed"
)

// SessionResult is pending while the session is open and terminal afterwards.
type SessionResult string

const (
	ResultPending   SessionResult = "pending"
	ResultApproved  SessionResult = "approved"
	ResultDenied    SessionResult = "denied"
	ResultCancelled SessionResult = "cancelled"
)

// MaxSessionMessages bounds the ballots linked to one session. Every linked
// message carries a live tally display, so the link count caps update fan-out.
const MaxSessionMessages = 10

const (
	AggregateTypeVoteSession = "vote_session"

	EventTypeVoteSessionClosed = "vote_session_closed"
)

// Change is one field delta carried by a build confirmation, recorded as
// (field, from, to) so ballots can show what approval would replace.
type Change struct {
	Field string `json:"field"`
	From  any    `json:"from,omitempty"`
	To    any    `json:"to"`
}

// BuildConfirmation is the payload of a session deciding a pending build. On
// approval the stored diff is applied to the build before it is confirmed.
type BuildConfirmation struct {
	BuildID int64
	Changes []Change
}

// LogDeletion is the payload of a session deciding whether a tracked log
// message gets marked for deletion.
type LogDeletion struct {
	TargetMessageID int64
	TargetChannelID int64
}

// VoteSession aggregates weighted votes toward one terminal result. Exactly
// one of Build or Deletion is set, matching Kind.
type VoteSession struct {
	ID            int64
	Kind          SessionKind
	AuthorID      int64
	PassThreshold float64
	FailThreshold float64
	Status        SessionStatus
	Result        SessionResult
	MessageIDs    []int64
	Build         *BuildConfirmation
	Deletion      *LogDeletion
	CreatedAt     time.Time
	ClosedAt      *time.Time
}

func (s VoteSession) IsClosed() bool {
	return s.Status == StatusClosed
}

// DecidedResult reports the terminal result once the tally crosses a
// threshold. A session with no votes never decides on its own; sweeping those
// away takes an explicit cancel.
func (s VoteSession) DecidedResult(tally Tally, voteCount int) (SessionResult, bool) {
	if voteCount == 0 {
		return ResultPending, false
	}
	if tally.Net >= s.PassThreshold {
		return ResultApproved, true
	}
	if tally.Net <= s.FailThreshold {
		return ResultDenied, true
	}
	return ResultPending, false
}

// Vote is one user's current stance in a session. Weight zero never persists;
// it is represented by the row's absence.
type Vote struct {
	SessionID int64
	UserID    int64
	Weight    float64
}

// Tally is always recomputed from the full vote set, never maintained as an
// incremental counter, so concurrent upserts converge to the correct total.
type Tally struct {
	Upvotes   float64
	Downvotes float64
	Net       float64
}

func TallyVotes(votes []Vote) Tally {
	var tally Tally
	for _, vote := range votes {
		switch {
		case vote.Weight > 0:
			tally.Upvotes += vote.Weight
		case vote.Weight < 0:
			tally.Downvotes -= vote.Weight
		}
		tally.Net += vote.Weight
	}
	return tally
}
