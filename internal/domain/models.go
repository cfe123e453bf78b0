package domain

// ModelOption describes one downloadable whisper.cpp model preset.
type ModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	URL         string `json:"url"`
	SizeBytes   int64  `json:"sizeBytes"`
	Description string `json:"description,omitempty"`
}

// ModelAsset reports the local state of one catalog model.
type ModelAsset struct {
	ID        string `json:"id"`
	LocalPath string `json:"localPath,omitempty"`
	Present   bool   `json:"present"`
	SizeBytes int64  `json:"sizeBytes"`
}
