package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ChangeDTO struct {
	Field string `json:"field"`
	From  any    `json:"from,omitempty"`
	To    any    `json:"to"`
}

type BuildConfirmationDTO struct {
	BuildID int64       `json:"build_id"`
	Changes []ChangeDTO `json:"changes,omitempty"`
}

type LogDeletionDTO struct {
	TargetMessageID int64 `json:"target_message_id"`
	TargetChannelID int64 `json:"target_channel_id"`
}

type CreateSessionRequest struct {
	Kind          string                `json:"kind"`
	AuthorID      int64                 `json:"author_id"`
	PassThreshold float64               `json:"pass_threshold"`
	FailThreshold float64               `json:"fail_threshold"`
	MessageIDs    []int64               `json:"message_ids,omitempty"`
	Build         *BuildConfirmationDTO `json:"build,omitempty"`
	Deletion      *LogDeletionDTO       `json:"deletion,omitempty"`
}

type CastVoteRequest struct {
	UserID int64   `json:"user_id"`
	Weight float64 `json:"weight"`
}

type CancelSessionRequest struct {
	RequesterID int64 `json:"requester_id"`
}

type TallyDTO struct {
	Upvotes   float64 `json:"upvotes"`
	Downvotes float64 `json:"downvotes"`
	Net       float64 `json:"net"`
}

type VoteDTO struct {
	UserID int64   `json:"user_id"`
	Weight float64 `json:"weight"`
}

type SessionDTO struct {
	SessionID     int64                 `json:"session_id"`
	Kind          string                `json:"kind"`
	AuthorID      int64                 `json:"author_id"`
	PassThreshold float64               `json:"pass_threshold"`
	FailThreshold float64               `json:"fail_threshold"`
	Status        string                `json:"status"`
	Result        string                `json:"result"`
	MessageIDs    []int64               `json:"message_ids,omitempty"`
	Build         *BuildConfirmationDTO `json:"build,omitempty"`
	Deletion      *LogDeletionDTO       `json:"deletion,omitempty"`
	CreatedAt     string                `json:"created_at"`
	ClosedAt      string                `json:"closed_at,omitempty"`
}

type SessionResponse struct {
	Item  SessionDTO `json:"item"`
	Tally TallyDTO   `json:"tally"`
	Votes []VoteDTO  `json:"votes,omitempty"`
}

type CastVoteResponse struct {
	Item    SessionDTO `json:"item"`
	Tally   TallyDTO   `json:"tally"`
	Toggled bool       `json:"toggled"`
	Closed  bool       `json:"closed"`
}

type ListSessionsResponse struct {
	Items []SessionResponse `json:"items"`
}
