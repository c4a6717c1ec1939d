package domain

// ChatResult is the outcome of one completed chat turn.
type ChatResult struct {
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Metadata  ChatMetadata `json:"metadata"`
}

// ChatMetadata reports which artifacts were in scope for the turn.
type ChatMetadata struct {
	TotalFiles    int      `json:"total_files"`
	ImagesUsed    int      `json:"images_used"`
	CSVsUsed      int      `json:"csvs_used"`
	DocumentsUsed int      `json:"documents_used"`
	FileOrder     []string `json:"file_order"`
}

// UploadResult is the common outcome of an artifact upload.
type UploadResult struct {
	SessionID string
	FileID    string
	Record    ArtifactRecord
	TotalKind int
}
