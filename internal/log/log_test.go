// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	l := &log.Logger{Handler: NewHandler(&buf), Level: log.DebugLevel}

	l.WithField("dataset", "stations").WithError(errors.New("boom")).Warn("flush failed")

	line := buf.String()
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} W flush failed dataset=stations error=boom\n$`, line)
}

func TestCustomHandler_UsesEntryTimestamp(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	require.NoError(t, h.HandleLog(&log.Entry{Level: log.InfoLevel, Message: "hello", Timestamp: ts, Fields: log.Fields{}}))
	assert.Equal(t, "2025-03-04 05:06:07 I hello\n", buf.String())
}

func TestSetLevel(t *testing.T) {
	orig := log.Log.(*log.Logger).Level
	t.Cleanup(func() { log.SetLevel(orig) })

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	require.NoError(t, SetLevel("WARN"))
	assert.Equal(t, log.WarnLevel, log.Log.(*log.Logger).Level)

	require.NoError(t, SetLevel(""))
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)

	assert.Error(t, SetLevel("chatty"))
}
