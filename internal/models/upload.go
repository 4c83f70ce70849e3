package models

// StoredUpload pairs an uploaded part's client-side name with where it was stored.
type StoredUpload struct {
	OriginalName string `json:"name"`
	Path         string `json:"path"`
}
