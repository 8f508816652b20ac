package models

// IngestResult reports a categorization run over the inbox
type IngestResult struct {
	Status         string `json:"status,omitempty"`
	Message        string `json:"message"`
	ProcessedCount int    `json:"processed_count"`
	TotalCount     int    `json:"total_count,omitempty"`
}

// UploadResult is the backend acknowledgement of a bulk email upload
type UploadResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
