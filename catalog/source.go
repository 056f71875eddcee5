package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/c360studio/sawari/assembly"
)

// FileSource streams entities out of a JSON seed file. The file holds
// an array of Car records, usually produced by a listing crawl.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source reading from the given seed file.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger}
}

// Load reads and decodes the seed file without starting a stream.
func (s *FileSource) Load() ([]Car, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", s.path, err)
	}

	var cars []Car
	if err := json.Unmarshal(data, &cars); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", s.path, err)
	}
	return cars, nil
}

// Entities implements assembly.Source. Invalid records are logged and
// skipped rather than aborting the run.
func (s *FileSource) Entities(ctx context.Context) (<-chan assembly.Entity, error) {
	cars, err := s.Load()
	if err != nil {
		return nil, err
	}

	ch := make(chan assembly.Entity)
	go func() {
		defer close(ch)
		skipped := 0
		for _, car := range cars {
			if err := car.Validate(); err != nil {
				s.logger.Warn("Skipping invalid seed record", "error", err)
				skipped++
				continue
			}
			select {
			case ch <- car.Entity():
			case <-ctx.Done():
				return
			}
		}
		if skipped > 0 {
			s.logger.Info("Seed file loaded with invalid records skipped",
				"path", s.path,
				"total", len(cars),
				"skipped", skipped)
		}
	}()
	return ch, nil
}
