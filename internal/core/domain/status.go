package domain

// BackendStatus describes the health of the active search backend.
type BackendStatus struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Backend is the active strategy.
	Backend SearchBackend `json:"backend"`

	// Count is the number of resources or databases available.
	Count int `json:"count"`

	// Names lists the resources or databases available.
	Names []string `json:"names"`

	// Error holds the reason for a degraded status.
	Error string `json:"error,omitempty"`
}

// Backend health values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// SourceInfo describes one searchable source as exposed to callers.
type SourceInfo struct {
	// Name is the display name of the source.
	Name string `json:"name"`

	// Database is the owning database, for indexed sources.
	Database string `json:"database,omitempty"`

	// Count is the number of indexed lines, for indexed sources.
	Count int64 `json:"count,omitempty"`

	// SizeBytes is the object size, for streamed sources.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}

// IndexReport summarises one indexing run.
type IndexReport struct {
	Database string   `json:"database"`
	Files    []string `json:"files"`
	Indexed  int64    `json:"indexed"`
	Skipped  int64    `json:"skipped"`
}
