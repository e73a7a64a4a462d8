package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/menu/domain"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("menu.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMenuItemRequest) (domain.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MenuItem{}, domain.ErrInvalidName
	}
	if req.Price <= 0 {
		return domain.MenuItem{}, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	item := domain.MenuItem{
		ID:        s.genID.Generate(),
		Code:      slug.Make(name),
		Name:      name,
		Price:     req.Price,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		return domain.MenuItem{}, err
	}

	return item, nil
}

func (s *Service) Lookup(ctx context.Context, id snowflake.ID) (domain.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if item == nil {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) SetAvailability(ctx context.Context, id snowflake.ID, available bool) error {
	updated, err := s.repo.UpdateAvailability(ctx, s.db, id, available)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}
