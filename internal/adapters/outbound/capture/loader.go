package capture

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// FileLoader implements domain.CaptureLoader over JSON files on disk.
type FileLoader struct {
	log zerolog.Logger
}

// NewFileLoader creates a FileLoader.
func NewFileLoader(log zerolog.Logger) *FileLoader {
	return &FileLoader{log: log}
}

// Load reads and parses one capture file.
func (l *FileLoader) Load(path string) (*domain.CaptureResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}

	result, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	l.log.Debug().
		Str("path", path).
		Int("requests", len(result.Requests)).
		Int("journey_steps", len(result.Journey)).
		Msg("capture loaded")
	return result, nil
}
