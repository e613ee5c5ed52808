package progress

import "errors"

var (
	// ErrNotFound indicates no record exists for the photo.
	ErrNotFound = errors.New("photo record not found")
	// ErrNotTracked indicates a status transition on a photo that was
	// never marked pending.
	ErrNotTracked = errors.New("photo not tracked")
	// ErrAlreadyClaimed indicates a photo is already held in progress.
	ErrAlreadyClaimed = errors.New("photo already claimed")
)
