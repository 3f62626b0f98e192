package roster

import "errors"

var (
	ErrInvalidName      = errors.New("student name must not be empty")
	ErrNoStickers       = errors.New("student has no stickers to remove")
	ErrNegativeStickers = errors.New("sticker count cannot be negative")
)
