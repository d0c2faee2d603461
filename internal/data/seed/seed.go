package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// File is the on-disk seed format:
//
//	roadmaps:
//	  - title: Frontend Development
//	    branches:
//	      - title: HTML & CSS Fundamentals
//	        units:
//	          - title: Semantic HTML
//	            duration: 1800
//	            isCore: true
type File struct {
	Roadmaps []RoadmapSeed `yaml:"roadmaps"`
}

type RoadmapSeed struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Branches    []domain.Branch `yaml:"branches"`
}

type Result struct {
	OwnerID string
	Created int
	Skipped int
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, rm := range f.Roadmaps {
		if strings.TrimSpace(rm.Title) == "" {
			return nil, fmt.Errorf("seed roadmap %d: %w: title required", i, apperr.ErrInvalidArgument)
		}
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Decode(bytes.NewReader(raw))
}

// Apply creates the seed roadmaps for the owner identified by email, creating the
// user when needed. Roadmaps whose title the owner already has are skipped, so
// repeated startups do not duplicate the catalog.
func Apply(dbc dbctx.Context, log *logger.Logger, store repos.Store, f *File, ownerEmail string) (Result, error) {
	log = log.With("component", "Seed")
	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if ownerEmail == "" {
		return Result{}, fmt.Errorf("seed owner email: %w", apperr.ErrInvalidArgument)
	}
	owner, err := ensureUser(dbc, store.Users, ownerEmail)
	if err != nil {
		return Result{}, err
	}
	res := Result{OwnerID: owner.ID}
	if f == nil {
		return res, nil
	}

	existing, err := store.Roadmaps.ListByOwner(dbc, owner.ID)
	if err != nil {
		return res, fmt.Errorf("list seed owner roadmaps: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Title] = true
	}

	for _, rs := range f.Roadmaps {
		if have[rs.Title] {
			res.Skipped++
			continue
		}
		row := &domain.Roadmap{
			Title:       rs.Title,
			Description: rs.Description,
			Branches:    rs.Branches,
			OwnerID:     owner.ID,
		}
		row.FillDefaults(uuid.NewString)
		if _, err := store.Roadmaps.Create(dbc, row); err != nil {
			return res, fmt.Errorf("seed roadmap %q: %w", rs.Title, err)
		}
		have[rs.Title] = true
		res.Created++
	}
	log.Info("seed applied", "owner_id", owner.ID, "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

func ensureUser(dbc dbctx.Context, users repos.UserRepo, email string) (*domain.User, error) {
	u, err := users.GetByEmail(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("lookup seed owner: %w", err)
	}
	if u != nil {
		return u, nil
	}
	u, err = users.Create(dbc, &domain.User{Email: email, DisplayName: displayName(email)})
	if errors.Is(err, apperr.ErrAlreadyExists) {
		return users.GetByEmail(dbc, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create seed owner: %w", err)
	}
	return u, nil
}

func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
