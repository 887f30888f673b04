package entities

import "time"

// MessagePurpose records why a message was posted. Build-facing purposes
// require a build reference; ballot messages require a session reference.
type MessagePurpose string

const (
	PurposeViewPendingBuild   MessagePurpose = "view_pending_build"
	PurposeViewConfirmedBuild MessagePurpose = "view_confirmed_build"
	PurposeVote               MessagePurpose = "vote"
	PurposeBuildOriginal      MessagePurpose = "build_original_message"
)

const (
	AggregateTypeMessage = "message"

	EventTypeMessageMarkedForDeletion = "message_marked_for_deletion"
)

// Message is a tracked chat message. The id is the chat platform's message id
// and is supplied by the caller, never generated here.
type Message struct {
	ID                int64
	ChannelID         int64
	AuthorID          int64
	Purpose           MessagePurpose
	Content           string
	BuildID           *int64
	VoteSessionID     *int64
	MarkedForDeletion bool
	MarkedAt          *time.Time
	TrackedAt         time.Time
}

// ValidPurpose reports whether the purpose is one the log understands.
func ValidPurpose(purpose MessagePurpose) bool {
	switch purpose {
	case PurposeViewPendingBuild, PurposeViewConfirmedBuild, PurposeVote, PurposeBuildOriginal:
		return true
	}
	return false
}

// RequiresBuild reports whether the purpose must carry a build reference.
func RequiresBuild(purpose MessagePurpose) bool {
	return purpose == PurposeViewPendingBuild || purpose == PurposeViewConfirmedBuild
}

// RequiresSession reports whether the purpose must carry a session reference.
func RequiresSession(purpose MessagePurpose) bool {
	return purpose == PurposeVote
}
