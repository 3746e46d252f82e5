// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
)

func testLogger() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.DebugLevel}
}

// shortDelay shrinks FetchDelay for the duration of the test.
func shortDelay(t *testing.T) {
	t.Helper()
	old := FetchDelay
	FetchDelay = time.Millisecond
	t.Cleanup(func() { FetchDelay = old })
}

type loaderError struct {
	msg   string
	retry bool
}

func (e loaderError) Error() string   { return e.msg }
func (e loaderError) Retryable() bool { return e.retry }

// keyLoader is a scriptable KeyLoader. By default it returns "value_<key>".
type keyLoader struct {
	fetchCalls   atomic.Int32
	persistCalls atomic.Int32

	delay   time.Duration
	fetch   func(key int) (string, error)
	persist func(values map[int]string) error

	mu        sync.Mutex
	persisted map[int]string
}

func (l *keyLoader) Fetch(ctx context.Context, key int) (string, error) {
	l.fetchCalls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.fetch != nil {
		return l.fetch(key)
	}
	return fmt.Sprintf("value_%d", key), nil
}

func (l *keyLoader) Persist(ctx context.Context, values map[int]string) error {
	l.persistCalls.Add(1)
	if l.persist != nil {
		if err := l.persist(values); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persisted = make(map[int]string, len(values))
	for k, v := range values {
		l.persisted[k] = v
	}
	return nil
}

// singleLoader is a scriptable Loader.
type singleLoader[V any] struct {
	calls atomic.Int32
	delay time.Duration
	value V
	err   error
}

func (l *singleLoader[V]) Fetch(ctx context.Context) (V, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	return l.value, l.err
}
