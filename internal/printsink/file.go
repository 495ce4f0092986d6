package printsink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSink writes each job to siparis_<order>_<YYYYMMDD_HHMMSS>.txt in dir.
type FileSink struct {
	dir string
	now func() time.Time
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("printsink: create %s: %w", dir, err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

func (s *FileSink) Name() string { return "file:" + s.dir }

func (s *FileSink) Print(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	at := job.CreatedAt
	if at.IsZero() {
		at = s.now()
	}
	name := job.OrderNumber
	if name == "" {
		name = job.ID
	}
	path := filepath.Join(s.dir, fmt.Sprintf("siparis_%s_%s.txt", sanitize(name), at.Format("20060102_150405")))
	// exclusive create so a reprint in the same second does not clobber the first copy
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) && job.ID != "" {
		path = strings.TrimSuffix(path, ".txt") + "_" + sanitize(job.ID) + ".txt"
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return fmt.Errorf("printsink: %w", err)
	}
	if _, err := f.WriteString(job.Text); err != nil {
		f.Close()
		return fmt.Errorf("printsink: write %s: %w", path, err)
	}
	return f.Close()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

var _ Sink = (*FileSink)(nil)
