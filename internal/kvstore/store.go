package kvstore

import (
	"context"
	"errors"
)

// ErrStorageIO wraps every failure reported by an underlying store backend.
var ErrStorageIO = errors.New("storage i/o error")

// Store is an asynchronous string-keyed persistent store holding whole serialised values.
type Store interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys ...string) error
	Close() error
}

func ioError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Key: key, Err: err}
}

// OpError describes a failed store operation. It matches ErrStorageIO with errors.Is.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return "kvstore " + e.Op + ": " + e.Err.Error()
	}
	return "kvstore " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool { return target == ErrStorageIO }
