package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitialized is returned by data operations on a dormant backend.
	ErrUninitialized = errors.New("data store not initialized")
	// ErrInvalidKey is returned when a key is empty.
	ErrInvalidKey = errors.New("key must not be empty")
	// ErrSerialization matches every *SerializationError via errors.Is.
	ErrSerialization = errors.New("value serialization failed")
)

// SerializationError reports a value that could not be encoded or decoded.
type SerializationError struct {
	Op  string // "encode" or "decode"
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s value for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSerialization) true for any SerializationError.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// ValidateKey rejects the empty key.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
