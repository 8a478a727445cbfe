package importer

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"maintainops/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service is the upload intake and job query surface. It validates uploads
// synchronously, stores the bytes, and creates pending jobs for the
// scheduler to pick up.
type Service struct {
	jobs   JobRepository
	store  ObjectStore
	node   *snowflake.Node
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	Jobs   JobRepository
	Store  ObjectStore
	Node   *snowflake.Node
	Logger *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		jobs:   p.Jobs,
		store:  p.Store,
		node:   p.Node,
		logger: logger,
	}
}

var allowedExtensions = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
}

// CreateJobs validates and stores each uploaded file, then creates one
// pending job per file. A bad upload rejects the whole request before any
// job is created.
func (s *Service) CreateJobs(ctx context.Context, tenantID, rawKind string, files []*multipart.FileHeader) ([]JobResponse, error) {
	kind, ok := ParseKind(rawKind)
	if !ok {
		return nil, errutil.BadRequest(fmt.Sprintf("unknown import type %q", rawKind))
	}
	if len(files) == 0 {
		return nil, errutil.BadRequest("no files uploaded")
	}

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if _, ok := allowedExtensions[ext]; !ok {
			return nil, errutil.UnsupportedMediaType(fmt.Sprintf("unsupported file extension %q", ext))
		}
	}

	out := make([]JobResponse, 0, len(files))
	for _, fh := range files {
		job, err := s.createJob(ctx, tenantID, kind, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, job.ToResponse())
	}
	return out, nil
}

func (s *Service) createJob(ctx context.Context, tenantID string, kind Kind, fh *multipart.FileHeader) (*ImportJob, error) {
	src, err := fh.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file", zap.String("file", fh.Filename), zap.Error(err))
		return nil, errutil.Internal("failed to read uploaded file", errutil.WithErr(err))
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	jobID := s.node.Generate().String()
	key := fmt.Sprintf("imports/%s/%s%s", tenantID, jobID, ext)

	if err := s.store.Put(ctx, key, src, fh.Size, allowedExtensions[ext]); err != nil {
		s.logger.Error("failed to store uploaded file", zap.String("file", fh.Filename), zap.Error(err))
		return nil, errutil.Internal("failed to store uploaded file", errutil.WithErr(err))
	}

	now := time.Now().UTC()
	job := &ImportJob{
		ID:        jobID,
		TenantID:  tenantID,
		Type:      kind,
		Status:    StatusPending,
		FileName:  fh.Filename,
		FileKey:   key,
		FileSize:  fh.Size,
		Errors:    marshalRowErrors(nil),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error("failed to create import job", zap.String("file", fh.Filename), zap.Error(err))
		return nil, errutil.Internal("failed to create import job", errutil.WithErr(err))
	}

	s.logger.Info("import job created",
		zap.String("job_id", job.ID),
		zap.String("tenant_id", tenantID),
		zap.String("type", string(kind)),
		zap.String("file", fh.Filename),
	)
	return job, nil
}

// GetJob returns current counters and the full error list, mid-run included.
func (s *Service) GetJob(ctx context.Context, tenantID, id string) (*JobResponse, error) {
	job, err := s.jobs.GetByID(ctx, tenantID, id)
	if err != nil {
		s.logger.Error("failed to get import job", zap.String("job_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to get import job", errutil.WithErr(err))
	}
	if job == nil {
		return nil, errutil.NotFound("import job not found")
	}
	resp := job.ToResponse()
	return &resp, nil
}

func (s *Service) ListJobs(ctx context.Context, tenantID string) ([]JobResponse, error) {
	jobs, err := s.jobs.List(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list import jobs", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, errutil.Internal("failed to list import jobs", errutil.WithErr(err))
	}

	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobs[i].ToResponse())
	}
	return out, nil
}
