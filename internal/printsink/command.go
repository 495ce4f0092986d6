package printsink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandSink pipes or spools the job through an external print command.
type CommandSink struct {
	name string
	// build returns the command for a job; tmpFile is set when the command
	// reads from a file rather than stdin.
	build   func(ctx context.Context, tmpFile string) *exec.Cmd
	useFile bool
}

// NewLPSink prints through the CUPS lp command, reading the job from stdin.
func NewLPSink(queue string) *CommandSink {
	return &CommandSink{
		name: queue,
		build: func(ctx context.Context, _ string) *exec.Cmd {
			return exec.CommandContext(ctx, "lp", "-d", queue, "-o", "cpi=12", "-")
		},
	}
}

// NewWindowsSink prints a temporary UTF-8 file through notepad's /pt switch,
// which targets a named printer without opening a window.
func NewWindowsSink(printer string) *CommandSink {
	return &CommandSink{
		name:    printer,
		useFile: true,
		build: func(ctx context.Context, tmpFile string) *exec.Cmd {
			return exec.CommandContext(ctx, "notepad.exe", "/pt", tmpFile, printer)
		},
	}
}

// NewCommandSink runs an arbitrary command with the job on stdin.
func NewCommandSink(name string, argv ...string) *CommandSink {
	return &CommandSink{
		name: name,
		build: func(ctx context.Context, _ string) *exec.Cmd {
			return exec.CommandContext(ctx, argv[0], argv[1:]...)
		},
	}
}

func (s *CommandSink) Name() string { return s.name }

func (s *CommandSink) Print(ctx context.Context, job Job) error {
	var tmp string
	if s.useFile {
		f, err := os.CreateTemp("", "factory-ticket-*.txt")
		if err != nil {
			return fmt.Errorf("printsink: temp file: %w", err)
		}
		tmp = f.Name()
		defer os.Remove(tmp)
		// BOM so the spooler reads the Turkish characters as UTF-8
		if _, err := f.WriteString("\ufeff" + job.Text); err != nil {
			f.Close()
			return fmt.Errorf("printsink: write temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("printsink: close temp file: %w", err)
		}
	}

	cmd := s.build(ctx, tmp)
	if !s.useFile {
		cmd.Stdin = strings.NewReader(job.Text)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// a killed spooler may leave children holding the pipes
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("printsink: %s: %w: %s", s.name, err, msg)
		}
		return fmt.Errorf("printsink: %s: %w", s.name, err)
	}
	return nil
}

var _ Sink = (*CommandSink)(nil)
