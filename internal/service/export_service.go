package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/minsu-dev/board-api/internal/models"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
	"github.com/minsu-dev/board-api/pkg/export"
	"github.com/minsu-dev/board-api/pkg/storage"
)

// exportBatchLimit caps how many posts a single export renders.
const exportBatchLimit = 10000

type exportPostLister interface {
	List(ctx context.Context, limit, offset int) ([]models.Post, int, error)
}

// ExportResult describes a generated export file and how to fetch it.
type ExportResult struct {
	File        string    `json:"file"`
	Format      string    `json:"format"`
	Count       int       `json:"count"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExportService renders post listings into downloadable CSV or PDF files.
// Files are written to local storage and served through expiring signed
// download tokens.
type ExportService struct {
	posts  exportPostLister
	store  *storage.LocalStorage
	signer *storage.Signer
	logger *zap.Logger
}

// NewExportService creates an instance of ExportService.
func NewExportService(posts exportPostLister, store *storage.LocalStorage, signer *storage.Signer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{posts: posts, store: store, signer: signer, logger: logger}
}

// ExportPosts renders the newest posts into a file of the requested format
// and returns a signed download reference.
func (s *ExportService) ExportPosts(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	posts, _, err := s.posts.List(ctx, exportBatchLimit, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load posts for export")
	}

	table := export.Table{
		Title:   "Posts",
		Headers: []string{"ID", "Author", "Title", "Created At"},
		Rows:    make([][]string, 0, len(posts)),
	}
	for _, post := range posts {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(post.ID, 10),
			post.Author,
			post.Title,
			post.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	data, err := export.Render(format, table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("posts_%s.%s", time.Now().UTC().Format("20060102T150405"), format)
	if _, err := s.store.Save(filename, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Sign(filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("export generated",
		zap.String("file", filename),
		zap.String("format", string(format)),
		zap.Int("posts", len(posts)))

	return &ExportResult{
		File:        filename,
		Format:      string(format),
		Count:       len(posts),
		DownloadURL: "/downloads/" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveDownload validates a download token and returns the absolute path
// of the file it references.
func (s *ExportService) ResolveDownload(token string) (string, error) {
	relPath, err := s.signer.Verify(token)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	path, err := s.store.Path(relPath)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}

	return path, nil
}

// CleanupLoop periodically removes export files older than maxAge. Runs
// until the context is cancelled.
func (s *ExportService) CleanupLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.store.CleanupOlderThan(maxAge)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
