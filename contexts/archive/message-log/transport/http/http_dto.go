package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TrackMessageRequest struct {
	MessageID     int64  `json:"message_id"`
	ChannelID     int64  `json:"channel_id"`
	AuthorID      int64  `json:"author_id"`
	Purpose       string `json:"purpose"`
	Content       string `json:"content,omitempty"`
	BuildID       *int64 `json:"build_id,omitempty"`
	VoteSessionID *int64 `json:"vote_session_id,omitempty"`
}

type MessageDTO struct {
	MessageID         int64  `json:"message_id"`
	ChannelID         int64  `json:"channel_id"`
	AuthorID          int64  `json:"author_id"`
	Purpose           string `json:"purpose"`
	Content           string `json:"content,omitempty"`
	BuildID           *int64 `json:"build_id,omitempty"`
	VoteSessionID     *int64 `json:"vote_session_id,omitempty"`
	MarkedForDeletion bool   `json:"marked_for_deletion"`
	MarkedAt          string `json:"marked_at,omitempty"`
	TrackedAt         string `json:"tracked_at"`
}

type MessageResponse struct {
	Item MessageDTO `json:"item"`
}

type ListMessagesResponse struct {
	Items []MessageDTO `json:"items"`
}
