package repositories

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameConflict = errors.New("name is already registered")
)

// RosterRepository is a newline-delimited list of unique display names.
type RosterRepository interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) error
}

type fileRosterRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRosterRepository reads and appends names in the UTF-8 text file at
// path. The file is created on the first Add.
func NewFileRosterRepository(path string) RosterRepository {
	return &fileRosterRepository{path: path}
}

// List returns trimmed, non-blank lines in file order. A missing file is an
// empty roster.
func (r *fileRosterRepository) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list()
}

func (r *fileRosterRepository) list() ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", r.path, err)
	}
	defer f.Close()

	names := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return names, nil
}

func (r *fileRosterRepository) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.list()
	if err != nil {
		return err
	}
	for _, n := range existing {
		if n == name {
			return ErrNameConflict
		}
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", r.path, err)
		}
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", r.path, err)
	}
	line := name + "\n"
	if missingTrailingNewline(r.path) {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", r.path, err)
	}
	return f.Close()
}

func missingTrailingNewline(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return false
	}
	return data[len(data)-1] != '\n'
}
