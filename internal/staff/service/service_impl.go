package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/cache"
	"github.com/expediterhq/expediter/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cache cache.StaffResolverCache `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	cache cache.StaffResolverCache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("staff.service"),
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateStaffRequest) (domain.Staff, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.Staff{}, domain.ErrInvalidUsername
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Staff{}, domain.ErrInvalidName
	}

	role, ok := domain.ParseRole(strings.TrimSpace(req.Role))
	if !ok {
		return domain.Staff{}, domain.ErrInvalidRole
	}

	if strings.TrimSpace(req.Password) == "" {
		return domain.Staff{}, domain.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Staff{}, err
	}

	now := time.Now().UTC()
	member := domain.Staff{
		ID:           s.genID.Generate(),
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return domain.Staff{}, err
	}

	return member, nil
}

func (s *Service) Resolve(ctx context.Context, id string) (domain.Identity, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Identity{}, domain.ErrInvalidID
	}

	if s.cache != nil {
		if identity, ok := s.cache.GetIdentity(parsed); ok {
			return identity, nil
		}
	}

	member, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Identity{}, err
	}
	if member == nil {
		return domain.Identity{}, domain.ErrNotFound
	}

	identity := domain.Identity{
		ID:   member.ID,
		Name: member.Name,
		Role: member.Role,
	}
	if s.cache != nil {
		s.cache.SetIdentity(identity)
	}
	return identity, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Staff, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	members := make([]domain.Staff, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}
	return members, nil
}
