package models

import "time"

// FileInfo describes a file written by the local store.
type FileInfo struct {
	Path     string    `json:"path"` // forward slashes, relative to the process when root is
	Category string    `json:"category"`
	Ext      string    `json:"ext"`
	Size     int64     `json:"size"`
	StoredAt time.Time `json:"storedAt"`
}
