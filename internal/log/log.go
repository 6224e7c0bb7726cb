// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/iconctl/internal/config"
)

// InitLogger sets up Apex with a CustomHandler on stderr and a log level from
// the ICONCTL_LOG env variable. Stdout is left for icon markup.
func InitLogger() {
	level := "ERROR"
	if env, err := config.ParseEnv(); err == nil && env.LogLevel != "" {
		level = env.LogLevel
	}
	Setup(os.Stderr, level)
}

// Setup installs a CustomHandler writing to w at the given level. Unknown
// levels fall back to ERROR.
func Setup(w io.Writer, level string) {
	log.SetHandler(&CustomHandler{Writer: w})
	if l, err := log.ParseLevel(strings.ToLower(level)); err != nil {
		log.SetLevel(log.ErrorLevel)
	} else {
		log.SetLevel(l)
	}
}

// CustomHandler formats log messages on a single line.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp, level, e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	_, err := io.WriteString(w, b.String())
	return err
}
