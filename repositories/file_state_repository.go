package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-runner/models"
)

const (
	currentTournamentFile = "current_tournament.json"
	reportFilePrefix      = "tournament_"
	reportFileExt         = ".json"
)

type fileStateRepository struct {
	dir string
}

// NewFileStateRepository stores tournaments as JSON documents inside dir.
// The directory is created if it does not exist yet.
func NewFileStateRepository(dir string) (StateRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tournaments directory %s: %w", dir, err)
	}
	return &fileStateRepository{dir: dir}, nil
}

func (r *fileStateRepository) currentPath() string {
	return filepath.Join(r.dir, currentTournamentFile)
}

func (r *fileStateRepository) reportPath(number int) string {
	return filepath.Join(r.dir, reportFilePrefix+strconv.Itoa(number)+reportFileExt)
}

func (r *fileStateRepository) LoadCurrent(ctx context.Context) (*models.TournamentState, error) {
	data, err := os.ReadFile(r.currentPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read current tournament: %w", err)
	}

	var state models.TournamentState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupted, err)
	}
	return &state, nil
}

func (r *fileStateRepository) SaveCurrent(ctx context.Context, state *models.TournamentState) error {
	if err := writeJSONFile(r.currentPath(), state); err != nil {
		return fmt.Errorf("failed to save current tournament: %w", err)
	}
	return nil
}

func (r *fileStateRepository) DeleteCurrent(ctx context.Context) error {
	err := os.Remove(r.currentPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete current tournament: %w", err)
	}
	return nil
}

func (r *fileStateRepository) CreateReport(ctx context.Context, report *models.TournamentReport) (int, error) {
	entries, err := r.reportEntries()
	if err != nil {
		return 0, err
	}

	number := len(entries) + 1
	path := r.reportPath(number)
	// Numbering counts files, so a gap left by a deleted report would collide.
	for {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			break
		}
		number++
		path = r.reportPath(number)
	}

	stored := *report
	stored.Number = number
	if err := writeJSONFile(path, &stored); err != nil {
		return 0, fmt.Errorf("failed to write tournament report %d: %w", number, err)
	}
	return number, nil
}

func (r *fileStateRepository) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	entries, err := r.reportEntries()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ReportSummary, 0, len(entries))
	for _, name := range entries {
		number, ok := reportNumber(name)
		if !ok {
			continue
		}
		report, err := r.GetReport(ctx, number)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ReportSummary{
			Number: number,
			Name:   strings.TrimSuffix(name, reportFileExt),
			Winner: report.Winner,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Number < summaries[j].Number
	})
	return summaries, nil
}

func (r *fileStateRepository) GetReport(ctx context.Context, number int) (*models.TournamentReport, error) {
	data, err := os.ReadFile(r.reportPath(number))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read tournament report %d: %w", number, err)
	}

	var report models.TournamentReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode tournament report %d: %w", number, err)
	}
	report.Number = number
	return &report, nil
}

// reportEntries lists file names following the report naming convention.
func (r *fileStateRepository) reportEntries() ([]string, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament reports: %w", err)
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), reportFilePrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func reportNumber(fileName string) (int, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(fileName, reportFilePrefix), reportFileExt)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// writeJSONFile replaces path atomically with the indented JSON encoding of v.
func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
