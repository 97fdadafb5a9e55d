package notification

import (
	"errors"
)

var (
	// ErrUnauthorized means the caller has no rights over the target recipient.
	// Never retried automatically.
	ErrUnauthorized = errors.New("caller is not allowed to access these notifications")

	// ErrNotFound means the target notification is absent or not owned by the caller.
	ErrNotFound = errors.New("notification not found")

	// ErrDeletionUnconfirmed means the delete appeared to succeed but the
	// confirming read still found the row. Surfaced as a distinct failure so
	// callers do not assume state changed.
	ErrDeletionUnconfirmed = errors.New("deletion could not be confirmed, notification still exists")

	// ErrInvalidCategory means the category is not part of the closed enum.
	ErrInvalidCategory = errors.New("unknown notification category")
)
