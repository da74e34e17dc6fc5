package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/2beens/fitassist/pkg"
)

const fileNameTimeLayout = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N} _-]+`)

// Store keeps rendered reports and returns where a report ended up.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// FileName is Fitness_Report_{name}_{YYYYMMDD_HHMMSS}.pdf, with characters unsafe
// for paths and object keys in the user name replaced.
func FileName(userName string, generatedAt time.Time) string {
	name := unsafeNameChars.ReplaceAllString(strings.TrimSpace(userName), "_")
	return fmt.Sprintf("Fitness_Report_%s_%s.pdf", name, generatedAt.Format(fileNameTimeLayout))
}

type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	exists, err := pkg.PathExists(dir, true)
	if err != nil {
		return nil, fmt.Errorf("check reports dir: %w", err)
	}
	if !exists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create reports dir: %w", err)
		}
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

// List returns the report files in the store, sorted by name.
func (s *DiskStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
