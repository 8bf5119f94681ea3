// Package workservice coordinates the store, the change-review engine, the
// Markdown mirror and event publishing for works.
package workservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/changes"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/store"
)

// Publisher receives work change notifications.
type Publisher interface {
	PublishWorkEvent(kind, workID, fileName string)
}

// Exporter mirrors works to another medium.
type Exporter interface {
	Export(w *models.Work) (int, error)
	RemoveWork(workID string) error
}

// Config holds the per-deployment defaults of the service.
type Config struct {
	TitlePrefix string
	DeviceName  string
	DisplayName string
}

// WorkSummary is a lightweight item in a list response.
type WorkSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileDetail is the full representation of one document file.
type FileDetail struct {
	WorkID    string              `json:"work_id"`
	FileName  string              `json:"file_name"`
	Kind      models.DocumentKind `json:"kind"`
	Text      string              `json:"text"`
	Checksum  string              `json:"checksum"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SnapshotRequest describes a snapshot to stage from the current texts.
type SnapshotRequest struct {
	Title     string   `json:"title"`
	Memo      string   `json:"memo"`
	FileNames []string `json:"file_names"`
}

// Validate checks title and memo. An empty selection is reported by the
// manifest builder.
func (r SnapshotRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Memo, validation.Length(0, 2000)),
	)
}

// SnapshotDetail is a snapshot with its decoded manifest.
type SnapshotDetail struct {
	Snapshot models.Snapshot   `json:"snapshot"`
	Manifest manifest.Manifest `json:"manifest"`
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithExporter sets the mirror.
func WithExporter(e Exporter) Option {
	return func(s *Service) { s.mirror = e }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service coordinates store, review engine, mirror and events.
type Service struct {
	db     store.WorkStore
	cfg    Config
	logger *slog.Logger
	events Publisher
	mirror Exporter
	now    func() time.Time
}

// NewService creates a new work service.
func NewService(db store.WorkStore, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if cfg.TitlePrefix == "" {
		cfg.TitlePrefix = "Work "
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = models.DocContent.FileName()
	}
	s := &Service{
		db:     db,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateWork builds a work from a template and stores it. A blank title is
// replaced by the next free "<prefix> N" title.
func (s *Service) CreateWork(ctx context.Context, title string, template models.WorkTemplate) (*models.Work, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		rows, err := s.db.ListWorks(ctx)
		if err != nil {
			return nil, err
		}
		existing := make([]string, len(rows))
		for i, r := range rows {
			existing[i] = r.Title
		}
		title = models.NextWorkTitle(s.cfg.TitlePrefix, existing)
	}

	w := models.NewWork(title, template, s.now())
	if err := s.db.InsertWork(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info("work created", slog.String("work_id", w.ID), slog.String("title", w.Title))
	s.export(w)
	s.publish(sse.KindCreated, w.ID, "")
	return w, nil
}

// GetWork returns a work with its tree and snapshots.
func (s *Service) GetWork(ctx context.Context, id string) (*models.Work, error) {
	return s.db.GetWork(ctx, id)
}

// ListWorks returns all works, most recently updated first.
func (s *Service) ListWorks(ctx context.Context) ([]WorkSummary, error) {
	rows, err := s.db.ListWorks(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]WorkSummary, len(rows))
	for i, r := range rows {
		items[i] = WorkSummary{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	}
	return items, nil
}

// DeleteWork removes a work with everything it owns.
func (s *Service) DeleteWork(ctx context.Context, id string) error {
	if err := s.db.DeleteWork(ctx, id); err != nil {
		return err
	}
	s.logger.Info("work deleted", slog.String("work_id", id))
	if s.mirror != nil {
		if err := s.mirror.RemoveWork(id); err != nil {
			s.logger.Warn("mirror remove failed", slog.String("work_id", id), slog.String("error", err.Error()))
		}
	}
	s.publish(sse.KindDeleted, id, "")
	return nil
}

// ReadFile returns one document file of a work.
func (s *Service) ReadFile(ctx context.Context, workID, fileName string) (*FileDetail, error) {
	w, err := s.db.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	d := w.DocumentByFileName(fileName)
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return fileDetail(workID, d), nil
}

// WriteFile replaces the text of a document file. When ifMatch is set it must
// equal the checksum of the current text. Writing identical text is a no-op.
func (s *Service) WriteFile(ctx context.Context, workID, fileName, text, ifMatch string) (*FileDetail, error) {
	if workID == "" {
		return nil, apperr.ErrNotFound
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", apperr.ErrValidation)
	}
	w, err := s.db.UpdateWork(ctx, workID, func(w *models.Work) error {
		d := w.DocumentByFileName(fileName)
		if d == nil {
			return apperr.ErrNotFound
		}
		if ifMatch != "" && ifMatch != checksum.String(d.Text) {
			return apperr.ErrConflict
		}
		if d.Text == text {
			return errUnchanged
		}
		works := []*models.Work{w}
		if !models.UpdateWorkDocument(works, workID, fileName, text, s.now()) {
			return apperr.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return s.ReadFile(ctx, workID, fileName)
	}
	if err != nil {
		return nil, err
	}

	d := w.DocumentByFileName(fileName)
	s.logger.Debug("file updated", slog.String("work_id", workID), slog.String("file", d.FileName()))
	s.export(w)
	s.publish(sse.KindUpdated, workID, d.FileName())
	return fileDetail(workID, d), nil
}

var errUnchanged = errors.New("workservice: unchanged")

// UpdateFile replaces the text of a document file without a precondition.
func (s *Service) UpdateFile(ctx context.Context, workID, fileName, text string) error {
	_, err := s.WriteFile(ctx, workID, fileName, text, "")
	return err
}

// Changes summarizes every file of a work against its baseline. The baseline
// of a file is its text in the newest snapshot that contains it, or empty.
// displayName labels the placeholder summary of a work without documents.
func (s *Service) Changes(ctx context.Context, workID, displayName string) ([]changes.FileSummary, error) {
	w, err := s.db.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = s.cfg.DisplayName
	}
	return changes.Build(w, changes.MapBaseline(s.baseline(w)), displayName), nil
}

// FileChanges returns the summary of a single file.
func (s *Service) FileChanges(ctx context.Context, workID, fileName string) (changes.FileSummary, error) {
	kind, ok := models.ParseDocumentKind(fileName)
	if !ok {
		return changes.FileSummary{}, apperr.ErrNotFound
	}
	summaries, err := s.Changes(ctx, workID, "")
	if err != nil {
		return changes.FileSummary{}, err
	}
	for _, f := range summaries {
		if f.FileName == kind.FileName() {
			return f, nil
		}
	}
	return changes.FileSummary{}, apperr.ErrNotFound
}

// Review opens a change selection over the changed files of a work. A nil
// initial selection selects every changed file.
func (s *Service) Review(ctx context.Context, workID string, initial []string) (changes.Selection, error) {
	summaries, err := s.Changes(ctx, workID, "")
	if err != nil {
		return changes.Selection{}, err
	}
	if initial == nil {
		return changes.NewSelection(summaries), nil
	}
	return changes.NewSelectionFrom(summaries, initial), nil
}

func (s *Service) baseline(w *models.Work) map[string]string {
	texts := make(map[string]string)
	for _, snap := range w.Snapshots {
		m, err := manifest.Decode(snap.Manifest)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot",
				slog.String("snapshot_id", snap.ID), slog.String("error", err.Error()))
			continue
		}
		for _, f := range m.Files {
			kind, ok := models.ParseDocumentKind(f.FileName)
			if !ok {
				continue
			}
			if _, seen := texts[kind.FileName()]; !seen {
				texts[kind.FileName()] = f.Text
			}
		}
	}
	return texts
}

// CreateSnapshot stages the requested files of a work into a manual snapshot.
func (s *Service) CreateSnapshot(ctx context.Context, workID string, req SnapshotRequest) (*SnapshotDetail, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	w, err := s.db.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	m, err := manifest.Build(w, req.FileNames, now)
	if err != nil {
		return nil, err
	}
	payload, err := manifest.Encode(m)
	if err != nil {
		return nil, err
	}

	snap := models.Snapshot{
		ID:         uuid.NewString(),
		WorkID:     workID,
		Title:      req.Title,
		Memo:       req.Memo,
		CreatedAt:  now,
		DeviceName: s.cfg.DeviceName,
		Kind:       models.SnapshotManual,
		Manifest:   payload,
	}
	if err := s.db.InsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	s.logger.Info("snapshot created",
		slog.String("work_id", workID), slog.String("snapshot_id", snap.ID), slog.Int("files", len(m.Files)))
	s.publish(sse.KindSnapshot, workID, "")
	return &SnapshotDetail{Snapshot: snap, Manifest: m}, nil
}

// ListSnapshots returns the snapshots of a work, newest first.
func (s *Service) ListSnapshots(ctx context.Context, workID string) ([]models.Snapshot, error) {
	if _, err := s.db.GetWork(ctx, workID); err != nil {
		return nil, err
	}
	return s.db.ListSnapshots(ctx, workID)
}

// GetSnapshot returns a snapshot and its decoded manifest.
func (s *Service) GetSnapshot(ctx context.Context, workID, id string) (*SnapshotDetail, error) {
	snap, err := s.db.GetSnapshot(ctx, workID, id)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Decode(snap.Manifest)
	if err != nil {
		return nil, err
	}
	return &SnapshotDetail{Snapshot: snap, Manifest: m}, nil
}

// Search finds documents matching query across all works.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]store.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrValidation)
	}
	return s.db.SearchDocuments(ctx, query, limit)
}

// WorkIDs lists the ids of all works.
func (s *Service) WorkIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.ListWorks(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

// Work loads one work. Together with WorkIDs it lets the mirror sync from the service.
func (s *Service) Work(ctx context.Context, id string) (*models.Work, error) {
	return s.db.GetWork(ctx, id)
}

func (s *Service) export(w *models.Work) {
	if s.mirror == nil {
		return
	}
	if _, err := s.mirror.Export(w); err != nil {
		s.logger.Warn("mirror export failed", slog.String("work_id", w.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind, workID, fileName string) {
	if s.events != nil {
		s.events.PublishWorkEvent(kind, workID, fileName)
	}
}

func fileDetail(workID string, d *models.Document) *FileDetail {
	return &FileDetail{
		WorkID:    workID,
		FileName:  d.FileName(),
		Kind:      d.Kind,
		Text:      d.Text,
		Checksum:  checksum.String(d.Text),
		UpdatedAt: d.UpdatedAt,
	}
}
