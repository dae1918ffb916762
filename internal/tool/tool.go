// Package tool runs the external texture executables and turns their
// console output into log entries.
package tool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/midgard-assets/internal/logger"
)

// ErrToolReported is returned when the tool printed an error line, even if
// it exited cleanly.
var ErrToolReported = errors.New("tool reported an error")

// Entry is one line of tool output.
type Entry struct {
	Level  zapcore.Level
	Stream string // "stdout" or "stderr"
	Text   string
}

// Runner invokes an executable with arguments expanded from a template.
type Runner interface {
	Run(ctx context.Context, exe, template string, args ...any) ([]Entry, error)
}

// Exec runs tools as child processes and blocks until they exit.
type Exec struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

// NewExec returns a Runner backed by os/exec.
func NewExec() *Exec {
	return &Exec{}
}

// Run expands template, runs exe and waits for it. Every output line is
// logged at its classified level and returned.
func (e *Exec) Run(ctx context.Context, exe, template string, args ...any) ([]Entry, error) {
	argv, err := Expand(template, args...)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, argv...)
	cmd.Dir = e.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	name := filepath.Base(exe)
	log := logger.Named("tool").With(zap.String("tool", name))
	log.Debug("running", zap.Strings("args", argv))

	runErr := cmd.Run()

	entries := append(Parse("stdout", stdout.Bytes()), Parse("stderr", stderr.Bytes())...)
	reported := false
	for _, entry := range entries {
		if ce := log.Check(entry.Level, entry.Text); ce != nil {
			ce.Write(zap.String("stream", entry.Stream))
		}
		if entry.Level >= zapcore.ErrorLevel {
			reported = true
		}
	}

	if runErr != nil {
		return entries, fmt.Errorf("%s %s: %w", name, strings.Join(argv, " "), runErr)
	}
	if reported {
		return entries, fmt.Errorf("%s: %w", name, ErrToolReported)
	}
	return entries, nil
}

// Expand splits template on whitespace and replaces every {N} placeholder
// with fmt.Sprint(args[N]). A field may hold several placeholders.
func Expand(template string, args ...any) ([]string, error) {
	fields := strings.Fields(template)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		var b strings.Builder
		rest := field
		for {
			open := strings.IndexByte(rest, '{')
			if open < 0 {
				b.WriteString(rest)
				break
			}
			end := strings.IndexByte(rest[open:], '}')
			if end < 0 {
				b.WriteString(rest)
				break
			}
			end += open
			n, err := strconv.Atoi(rest[open+1 : end])
			if err != nil {
				// Not a placeholder; keep the brace literally.
				b.WriteString(rest[:open+1])
				rest = rest[open+1:]
				continue
			}
			if n < 0 || n >= len(args) {
				return nil, fmt.Errorf("template %q references {%d} but %d arguments were given", template, n, len(args))
			}
			b.WriteString(rest[:open])
			b.WriteString(fmt.Sprint(args[n]))
			rest = rest[end+1:]
		}
		out = append(out, b.String())
	}
	return out, nil
}

// Parse splits output into entries, skipping blank lines.
func Parse(stream string, output []byte) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		entries = append(entries, Entry{Level: Classify(text), Stream: stream, Text: text})
	}
	return entries
}

// Classify assigns a level from the line text: any mention of "error" is an
// error, of "warning" a warning; everything else is info.
func Classify(line string) zapcore.Level {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"):
		return zapcore.ErrorLevel
	case strings.Contains(lower, "warning"):
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}
