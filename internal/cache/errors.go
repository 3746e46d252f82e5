// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoading marks a loader fetch that failed, after retries where
	// the error allowed them.
	ErrDataLoading = errors.New("data loading failed")

	// ErrPersist marks a failure to write a dataset to its snapshot.
	ErrPersist = errors.New("persist failed")

	// ErrSnapshotCorrupt marks a snapshot file that exists but cannot be
	// decoded or carries an unreadable timestamp.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)

// Error is returned by GetOrInsert. Kind is one of ErrDataLoading or
// ErrPersist; Err is the original loader or store error, kept intact so
// callers can still inspect it with errors.As.
type Error struct {
	Kind    error
	Dataset Name
	Key     string
	Err     error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key %s): %v", e.Kind, e.Dataset, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Dataset, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ReadError reports a snapshot file that exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read snapshot '%s': %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError reports a snapshot whose content is not a valid envelope.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode snapshot '%s': %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrSnapshotCorrupt, e.Err}
}

// DateError reports a snapshot whose registered_time cannot be parsed.
type DateError struct {
	Path string
	Date string
	Err  error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("snapshot '%s' has invalid date '%s': %v", e.Path, e.Date, e.Err)
}

func (e *DateError) Unwrap() []error {
	return []error{ErrSnapshotCorrupt, e.Err}
}

// WriteError reports a snapshot that could not be encoded or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write snapshot '%s': %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
