// Package printsink hands ticket text to a printer.
package printsink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Job is one document to print.
type Job struct {
	ID          string
	OrderNumber string
	Text        string
	CreatedAt   time.Time
}

// Sink sends jobs to a physical or logical printer.
type Sink interface {
	Print(ctx context.Context, job Job) error
	Name() string
}

// Open parses a sink identifier:
//
//	stdout              write to standard output
//	file:<dir>          one text file per job in dir
//	lp:<queue>          CUPS queue via lp
//	windows:<printer>   Windows spooler via notepad /pt
func Open(target string) (Sink, error) {
	kind, arg, _ := strings.Cut(target, ":")
	switch strings.ToLower(kind) {
	case "", "stdout":
		return NewWriterSink("stdout", os.Stdout), nil
	case "file":
		if arg == "" {
			return nil, fmt.Errorf("printsink: file needs a directory")
		}
		return NewFileSink(arg)
	case "lp":
		if arg == "" {
			return nil, fmt.Errorf("printsink: lp needs a queue name")
		}
		return NewLPSink(arg), nil
	case "windows":
		if arg == "" {
			return nil, fmt.Errorf("printsink: windows needs a printer name")
		}
		return NewWindowsSink(arg), nil
	default:
		return nil, fmt.Errorf("printsink: unknown sink %q", target)
	}
}

// WriterSink writes jobs to an io.Writer.
type WriterSink struct {
	name string
	w    io.Writer
}

func NewWriterSink(name string, w io.Writer) *WriterSink {
	return &WriterSink{name: name, w: w}
}

func (s *WriterSink) Name() string { return s.name }

func (s *WriterSink) Print(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, job.Text)
	return err
}

// Serialized lets the poller and manual test prints share one printer.
type Serialized struct {
	mu   sync.Mutex
	sink Sink
}

func NewSerialized(s Sink) *Serialized {
	return &Serialized{sink: s}
}

func (s *Serialized) Name() string { return s.sink.Name() }

func (s *Serialized) Print(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.Print(ctx, job)
}

var (
	_ Sink = (*WriterSink)(nil)
	_ Sink = (*Serialized)(nil)
)
