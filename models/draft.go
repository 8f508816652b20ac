package models

// Draft represents a saved reply candidate
type Draft struct {
	ID               string `json:"id"`
	EmailReferenceID string `json:"emailReferenceId"`
	EmailSubject     string `json:"emailSubject"`
	Content          string `json:"content"`
	LastSaved        string `json:"lastSaved"`
	Timestamp        string `json:"timestamp,omitempty"`
}

// SaveDraftRequest is the upsert payload. The backend computes lastSaved
// itself, so it is not sent.
type SaveDraftRequest struct {
	ID               string `json:"id"`
	EmailReferenceID string `json:"emailReferenceId"`
	EmailSubject     string `json:"emailSubject"`
	Content          string `json:"content"`
}

// ToSaveRequest strips the display timestamp from a draft.
func (d Draft) ToSaveRequest() SaveDraftRequest {
	return SaveDraftRequest{
		ID:               d.ID,
		EmailReferenceID: d.EmailReferenceID,
		EmailSubject:     d.EmailSubject,
		Content:          d.Content,
	}
}
