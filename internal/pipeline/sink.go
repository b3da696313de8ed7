package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirSink writes files into Dir, creating it on the first Create.
type DirSink struct {
	Dir string
}

func (s DirSink) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes a partially written file.
func (s DirSink) Remove(name string) error {
	return os.Remove(filepath.Join(s.Dir, name))
}
