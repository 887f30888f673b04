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

type SubmitBuildRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	SubmitterID int64          `json:"submitter_id"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type EditBuildRequest struct {
	Changes []ChangeDTO `json:"changes"`
}

type BuildDTO struct {
	BuildID     int64          `json:"build_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	SubmitterID int64          `json:"submitter_id"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Status      string         `json:"status"`
	Locked      bool           `json:"locked"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	ConfirmedAt string         `json:"confirmed_at,omitempty"`
}

type BuildResponse struct {
	Item BuildDTO `json:"item"`
}

type ListBuildsResponse struct {
	Items []BuildDTO `json:"items"`
}
