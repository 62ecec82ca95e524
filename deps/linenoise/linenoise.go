// Package linenoise wraps liner with the history helpers redis-cli expects.
package linenoise

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

const clearSeq = "\x1b[H\x1b[2J"

var ErrAborted = liner.ErrPromptAborted

type LineNoise struct {
	*liner.State
	out io.Writer
}

// New puts the terminal in raw mode. Close must be called to restore it.
func New() *LineNoise {
	ln := &LineNoise{State: liner.NewLiner(), out: os.Stdout}
	ln.SetCtrlCAborts(true)
	return ln
}

// SetHints installs a completer that offers every hint starting with the
// typed prefix, case-insensitively.
func (ln *LineNoise) SetHints(hints []string) {
	ln.SetCompleter(func(line string) []string {
		return complete(hints, line)
	})
}

func complete(hints []string, line string) []string {
	var out []string
	for _, h := range hints {
		if strings.HasPrefix(strings.ToLower(h), strings.ToLower(line)) {
			out = append(out, h)
		}
	}
	return out
}

// HistoryLoad reads history from filepath. A missing file is not an error.
func (ln *LineNoise) HistoryLoad(filepath string) error {
	content, err := os.ReadFile(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err = ln.ReadHistory(bytes.NewReader(content))
	return err
}

func (ln *LineNoise) HistorySave(filepath string) error {
	var buf bytes.Buffer
	_, err := ln.WriteHistory(&buf)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, buf.Bytes(), 0o600)
}

func (ln *LineNoise) ClearScreen() error {
	_, err := fmt.Fprint(ln.out, clearSeq)
	return err
}
