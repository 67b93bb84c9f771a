package dto

// ModelStatusResponse reports the shared model's load state
type ModelStatusResponse struct {
	Backend string `json:"backend"`
	Variant string `json:"variant"`
	State   string `json:"state"`
	Loads   int64  `json:"loads"`
	Source  string `json:"source,omitempty"`
	Error   string `json:"error,omitempty"`
}
