package tenant

import (
	"context"
	"strings"
	"time"

	"maintainops/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	repo   Repository
	node   *snowflake.Node
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Node       *snowflake.Node
	Logger     *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   p.Repository,
		node:   p.Node,
		logger: logger,
	}
}

func (s *Service) CreateTenant(ctx context.Context, name, slugName, timezone string) (*Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errutil.ValidationFailed("name is required")
	}

	if slugName == "" {
		slugName = slug.Make(name)
	}

	exist, err := s.repo.GetBySlug(ctx, slugName)
	if err != nil {
		s.logger.Error("failed query get tenant by slug", zap.Error(err))
		return nil, errutil.Internal("failed to check existing tenant", errutil.WithErr(err))
	}
	if exist != nil {
		s.logger.Warn("tenant already exists", zap.String("slug", slugName))
		return nil, errutil.New(errutil.StatusConflict, "tenant already exists")
	}

	now := time.Now().UTC()
	t := &Tenant{
		ID:        s.node.Generate().String(),
		Name:      name,
		Slug:      slugName,
		Timezone:  timezone,
		Status:    Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create tenant", zap.Error(err))
		return nil, errutil.Internal("failed to create tenant", errutil.WithErr(err))
	}

	return t, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]Tenant, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tenants", zap.Error(err))
		return nil, errutil.Internal("failed to list tenants", errutil.WithErr(err))
	}
	return tenants, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get tenant", zap.String("tenant_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to get tenant", errutil.WithErr(err))
	}
	if t == nil {
		return nil, errutil.NotFound("tenant not found")
	}
	return t, nil
}
