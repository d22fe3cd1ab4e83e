package models

import "errors"

// Engine errors - used across all layers
var (
	// ErrConfiguration indicates invalid parameters, raised before any work is done
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexEmpty indicates a search against a zero-entry index; rebuilding recovers it
	ErrIndexEmpty = errors.New("vector index is empty")

	// ErrIngestion indicates a corpus record failed validation; the whole rebuild is aborted
	ErrIngestion = errors.New("corpus ingestion failed")

	// ErrEmbedderUnavailable indicates the embedding backend could not be reached
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
)
