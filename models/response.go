package models

// QueryResponse is what the UI layer renders: the answer text and the
// ordered citation list. Grounded is false when the archive was silent and
// the answer says so explicitly.
type QueryResponse struct {
	Answer    string         `json:"answer"`
	Citations []EvidenceItem `json:"citations"`
	Grounded  bool           `json:"grounded"`
	Error     string         `json:"error,omitempty"`
}

// StatsResponse reports the size of the persisted index.
type StatsResponse struct {
	Chunks int `json:"chunks"`
}
