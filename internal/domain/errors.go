package domain

import "errors"

var (
	// ErrInvalidConfig signals unusable render settings (dpi or pixel bound <= 0).
	ErrInvalidConfig = errors.New("invalid render configuration")
	// ErrDecode signals a source document or page that cannot be rasterized.
	ErrDecode = errors.New("document decode failed")

	// ErrNotFound signals a missing source object or bucket.
	ErrNotFound = errors.New("object not found")
	// ErrAccessDenied signals rejected storage credentials or policy.
	ErrAccessDenied = errors.New("storage access denied")
	// ErrQuotaExceeded signals that the storage backend refused a write for quota reasons.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrTokenStoreNotReady signals that the token store has not been loaded yet.
	// This can happen during startup when the DB isn't ready.
	ErrTokenStoreNotReady = errors.New("token store not ready")
)
