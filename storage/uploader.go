package storage

import (
	"context"
	"io"

	"github.com/Dosada05/tournament-runner/models"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

// ReportArchiver copies completed tournament reports to off-host storage.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report *models.TournamentReport) (*UploadResult, error)
}
