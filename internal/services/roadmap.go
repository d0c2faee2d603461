package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type RoadmapInput struct {
	Title       string
	Description string
	Branches    []domain.Branch
}

type RoadmapService interface {
	Create(ctx context.Context, ownerID string, in RoadmapInput) (*domain.Roadmap, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Roadmap, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Roadmap, error)
	Replace(ctx context.Context, ownerID, id string, in RoadmapInput) (*domain.Roadmap, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListMergeable(ctx context.Context, ownerID string) ([]domain.RoadmapSummary, error)
}

type roadmapService struct {
	log      *logger.Logger
	roadmaps repos.RoadmapRepo
}

func NewRoadmapService(log *logger.Logger, roadmaps repos.RoadmapRepo) RoadmapService {
	return &roadmapService{log: log.With("service", "RoadmapService"), roadmaps: roadmaps}
}

func (s *roadmapService) Create(ctx context.Context, ownerID string, in RoadmapInput) (*domain.Roadmap, error) {
	row, err := buildRoadmap(ownerID, in)
	if err != nil {
		return nil, err
	}
	created, err := s.roadmaps.Create(dbc(ctx), row)
	if err != nil {
		return nil, fmt.Errorf("create roadmap: %w", err)
	}
	s.log.Debug("roadmap created", "roadmap_id", created.ID, "owner_id", ownerID, "branches", len(created.Branches))
	return created, nil
}

func (s *roadmapService) Get(ctx context.Context, ownerID, id string) (*domain.Roadmap, error) {
	row, err := s.roadmaps.GetByID(dbc(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	if row == nil || row.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	return row, nil
}

func (s *roadmapService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Roadmap, error) {
	rows, err := s.roadmaps.ListByOwner(dbc(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	return rows, nil
}

func (s *roadmapService) Replace(ctx context.Context, ownerID, id string, in RoadmapInput) (*domain.Roadmap, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	row, err := buildRoadmap(ownerID, in)
	if err != nil {
		return nil, err
	}
	row.ID = id
	if err := s.roadmaps.Replace(dbc(ctx), row); err != nil {
		return nil, fmt.Errorf("replace roadmap: %w", err)
	}
	return s.Get(ctx, ownerID, id)
}

func (s *roadmapService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.roadmaps.Delete(dbc(ctx), id); err != nil {
		return fmt.Errorf("delete roadmap: %w", err)
	}
	return nil
}

// ListMergeable lists the owner's plain roadmaps. Merged roadmaps are stored apart and never offered.
func (s *roadmapService) ListMergeable(ctx context.Context, ownerID string) ([]domain.RoadmapSummary, error) {
	rows, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoadmapSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Summary())
	}
	return out, nil
}

func buildRoadmap(ownerID string, in RoadmapInput) (*domain.Roadmap, error) {
	if err := validateRoadmapInput(in); err != nil {
		return nil, err
	}
	branches := make([]domain.Branch, len(in.Branches))
	for i, b := range in.Branches {
		branches[i] = b
		branches[i].Title = strings.TrimSpace(b.Title)
		branches[i].Units = append([]domain.LearningUnit(nil), b.Units...)
	}
	row := &domain.Roadmap{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Branches:    branches,
		OwnerID:     ownerID,
	}
	row.FillDefaults(uuid.NewString)
	return row, nil
}

func validateRoadmapInput(in RoadmapInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	if len(in.Branches) == 0 {
		return fmt.Errorf("%w: at least one branch is required", apperr.ErrInvalidArgument)
	}
	for i, b := range in.Branches {
		if strings.TrimSpace(b.Title) == "" {
			return fmt.Errorf("%w: branch %d has no title", apperr.ErrInvalidArgument, i)
		}
		if b.EstimatedDurationSeconds < 0 {
			return fmt.Errorf("%w: branch %q has a negative estimate", apperr.ErrInvalidArgument, b.Title)
		}
		for j, u := range b.Units {
			if strings.TrimSpace(u.Title) == "" {
				return fmt.Errorf("%w: unit %d of branch %q has no title", apperr.ErrInvalidArgument, j, b.Title)
			}
			if u.DurationSeconds < 0 {
				return fmt.Errorf("%w: unit %q has a negative duration", apperr.ErrInvalidArgument, u.Title)
			}
		}
	}
	return nil
}
