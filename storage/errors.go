package storage

import "errors"

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrInvalidCID    = errors.New("storage: invalid cid")
	ErrCIDMismatch   = errors.New("storage: cid mismatch")
	ErrImmutable     = errors.New("storage: immutable record mismatch")
	ErrInvalidRecord = errors.New("storage: bytes do not frame as a sealed address record")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidRecord(err error) bool { return errors.Is(err, ErrInvalidRecord) }
