package entity

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("record already exists")
	ErrNoRepAvailable = errors.New("no representative available")
)
