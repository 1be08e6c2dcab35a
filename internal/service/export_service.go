package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/export"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/jobs"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/storage"
)

// Export job states.
const (
	ExportStatusPending   = "PENDING"
	ExportStatusRunning   = "RUNNING"
	ExportStatusCompleted = "COMPLETED"
	ExportStatusFailed    = "FAILED"
)

type exportTimetableReader interface {
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportJob tracks one asynchronous export through its lifecycle.
type ExportJob struct {
	ID          string
	TimetableID string
	Format      string
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
	DownloadURL string
	Err         string
}

// exportJobStore keeps jobs in memory with a TTL, expired entries are
// dropped lazily on access.
type exportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*ExportJob
	ttl  time.Duration
}

func newExportJobStore(ttl time.Duration) *exportJobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &exportJobStore{jobs: make(map[string]*ExportJob), ttl: ttl}
}

func (s *exportJobStore) put(job *ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.jobs[job.ID] = job
}

func (s *exportJobStore) get(id string) (*ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || time.Since(job.CreatedAt) > s.ttl {
		return nil, false
	}
	clone := *job
	return &clone, true
}

func (s *exportJobStore) update(id string, fn func(*ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// prune removes expired entries, callers must hold the write lock.
func (s *exportJobStore) prune() {
	for id, job := range s.jobs {
		if time.Since(job.CreatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ExportServiceConfig tunes export behaviour.
type ExportServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Workers         int
	Retries         int
}

// ExportService renders timetable grids to downloadable files through a
// background worker queue.
type ExportService struct {
	timetables exportTimetableReader
	courses    generatorCourseSource
	staff      generatorStaffSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	store      *exportJobStore
	queue      *jobs.Queue
	logger     *zap.Logger
	cfg        ExportServiceConfig

	cleanupStop chan struct{}
	cleanupOnce sync.Once
}

// NewExportService constructs an ExportService and its worker queue.
func NewExportService(
	timetables exportTimetableReader,
	courses generatorCourseSource,
	staff generatorStaffSource,
	fileStore fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportServiceConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	s := &ExportService{
		timetables:  timetables,
		courses:     courses,
		staff:       staff,
		storage:     fileStore,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		signer:      signer,
		store:       newExportJobStore(cfg.ResultTTL),
		logger:      logger,
		cfg:         cfg,
		cleanupStop: make(chan struct{}),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker queue and the storage cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop()
}

// Stop drains the worker queue.
func (s *ExportService) Stop() {
	s.cleanupOnce.Do(func() { close(s.cleanupStop) })
	s.queue.Stop()
}

func (s *ExportService) cleanupLoop() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.cleanupStop:
			return
		case <-ticker.C:
			removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
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

// Enqueue accepts a new export job for the timetable and returns its
// acknowledgement immediately, rendering happens on the worker pool.
func (s *ExportService) Enqueue(ctx context.Context, timetableID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if _, err := s.timetables.GetByID(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	job := &ExportJob{
		ID:          uuid.NewString(),
		TimetableID: timetableID,
		Format:      strings.ToLower(req.Format),
		Status:      ExportStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.store.put(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export." + job.Format, Payload: timetableID}); err != nil {
		s.store.update(job.ID, func(j *ExportJob) {
			j.Status = ExportStatusFailed
			j.Err = "export queue unavailable"
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	return &dto.ExportJobResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Format:    job.Format,
		CreatedAt: job.CreatedAt,
	}, nil
}

// Status reports the state of an export job.
func (s *ExportService) Status(jobID string) (*dto.ExportStatusResponse, error) {
	job, ok := s.store.get(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found or expired")
	}
	resp := &dto.ExportStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Format:      job.Format,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.DownloadURL != "" {
		url := job.DownloadURL
		resp.DownloadURL = &url
	}
	if job.Err != "" {
		msg := job.Err
		resp.Error = &msg
	}
	return resp, nil
}

// ResolveDownload validates a signed token and opens the referenced file.
func (s *ExportService) ResolveDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, relPath, nil
}

// process renders one export job. Runs on the worker pool.
func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	timetableID, _ := job.Payload.(string)
	s.store.update(job.ID, func(j *ExportJob) { j.Status = ExportStatusRunning })

	err := s.render(ctx, job.ID, timetableID)
	if err != nil {
		s.store.update(job.ID, func(j *ExportJob) {
			j.Status = ExportStatusFailed
			j.Err = err.Error()
		})
		s.logger.Error("export failed", zap.String("job_id", job.ID), zap.String("timetable_id", timetableID), zap.Error(err))
		return err
	}
	return nil
}

func (s *ExportService) render(ctx context.Context, jobID, timetableID string) error {
	job, ok := s.store.get(jobID)
	if !ok {
		return fmt.Errorf("export job %s expired", jobID)
	}

	timetable, err := s.timetables.GetByID(ctx, timetableID)
	if err != nil {
		return fmt.Errorf("load timetable: %w", err)
	}
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load courses: %w", err)
	}
	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load staff: %w", err)
	}

	courseNames := make(map[string]string, len(courses))
	for _, c := range courses {
		courseNames[c.ID] = c.Name
	}
	staffNames := make(map[string]string, len(staff))
	for _, m := range staff {
		staffNames[m.ID] = m.Name
	}

	dataset := export.GridDataset(timetable.Schedule, courseNames, staffNames)

	var payload []byte
	switch job.Format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, timetable.Name)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-%s.%s", sanitizeFilename(timetable.Name), shortID(timetableID), shortID(jobID), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return fmt.Errorf("store export: %w", err)
	}

	token, _, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		return fmt.Errorf("sign export url: %w", err)
	}

	now := time.Now().UTC()
	url := fmt.Sprintf("%s/exports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	s.store.update(jobID, func(j *ExportJob) {
		j.Status = ExportStatusCompleted
		j.CompletedAt = &now
		j.DownloadURL = url
	})
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		cleaned = "timetable"
	}
	return strings.ToLower(cleaned)
}
