// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler writing to stderr and a log
// level from the EVECTL_LOG env variable. An unknown level falls back to
// ERROR.
func InitLogger() {
	log.SetHandler(NewHandler(os.Stderr))
	if err := SetLevel(os.Getenv("EVECTL_LOG")); err != nil {
		_ = SetLevel("")
		log.WithError(err).Warn("ignoring EVECTL_LOG")
	}
}

// SetLevel changes the level of the default logger. An empty level is
// ERROR.
func SetLevel(level string) error {
	if level == "" {
		level = "ERROR"
	}
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s'", level)
	}
	log.SetLevel(l)
	return nil
}

// CustomHandler formats log messages as "timestamp L message key=value".
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	b.WriteString(e.Timestamp.Format(time.DateTime))
	fmt.Fprintf(&b, " %.1s %s", strings.ToUpper(e.Level.String()), e.Message)

	names := e.Fields.Names()
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
