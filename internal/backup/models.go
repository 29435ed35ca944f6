package backup

import "github.com/fdg312/calorie-diary/internal/diary"

// ImportResponse summarises the diary after a restore.
type ImportResponse struct {
	Days      int        `json:"days"`
	Entries   int        `json:"entries"`
	Templates int        `json:"templates"`
	Goal      diary.Goal `json:"goal"`
}

type ArchiveResponse struct {
	ObjectKey string `json:"object_key"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
