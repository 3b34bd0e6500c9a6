package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/repository"
)

const (
	maxTitleLength   = 200
	maxBriefLength   = 200
	maxContextLength = 4000
	maxScriptLength  = 20000
	defaultCategory  = "General"
	source           = "studio"
)

// Service handles studio project operations.
type Service struct {
	mu         sync.Mutex
	repo       Repository
	ledger     Ledger
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, ledger Ledger, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, activities: activities, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Title    string
	Category string
	Platform Platform
}

// UpdateRequest changes descriptive fields. Nil fields are left as is.
type UpdateRequest struct {
	ID       string
	Title    *string
	Category *string
	Platform *Platform
	Script   *Script
}

// Create creates a new idea and grants the creation reward.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Outcome, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidInput
	}
	platform := req.Platform
	if platform == "" {
		platform = PlatformTwitch
	}
	if !validPlatform(platform) {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, platform)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	proj := &Project{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  category,
		Platform:  platform,
		Status:    StatusIdea,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	res, err := s.ledger.ApplyXP(ctx, XPCreate, source)
	if err != nil {
		if derr := s.repo.Delete(ctx, proj.ID); derr != nil {
			s.logger.Error("project rollback failed", "project_id", proj.ID, "error", derr)
		}
		return nil, fmt.Errorf("granting xp: %w", err)
	}
	return &Outcome{Project: proj, XP: res}, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns projects in creation order.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Project, error) {
	if opts.Status != nil && stageIndex(*opts.Status) < 0 {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *opts.Status)
	}
	projects, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Update edits a project's descriptive fields. No XP is involved.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proj, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, ErrInvalidInput
		}
		proj.Title = title
	}
	if req.Category != nil {
		proj.Category = strings.TrimSpace(*req.Category)
	}
	if req.Platform != nil {
		if !validPlatform(*req.Platform) {
			return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, *req.Platform)
		}
		proj.Platform = *req.Platform
	}
	if req.Script != nil {
		script, err := cleanScript(*req.Script)
		if err != nil {
			return nil, err
		}
		proj.Script = script
	}
	proj.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, proj); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return proj, nil
}

// SetGeneratedContent stores a draft written for the project's script. The
// rest of the brief is left as it is now, not as it was when the draft was
// requested.
func (s *Service) SetGeneratedContent(ctx context.Context, id, content string) (*Project, error) {
	if len(content) > maxScriptLength {
		return nil, fmt.Errorf("%w: script exceeds %d characters", ErrInvalidInput, maxScriptLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	script := Script{}
	if proj.Script != nil {
		script = *proj.Script
	}
	script.GeneratedContent = content
	proj.Script = &script
	proj.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, proj); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	s.logger.Info("script generated", "project_id", id, "length", len(content))
	return proj, nil
}

// Advance moves a project to the next stage and grants that stage's reward.
func (s *Service) Advance(ctx context.Context, id string) (*Outcome, error) {
	return s.step(ctx, id, 1)
}

// MoveBack returns a project to the previous stage and revokes the reward of
// the stage being left.
func (s *Service) MoveBack(ctx context.Context, id string) (*Outcome, error) {
	return s.step(ctx, id, -1)
}

// Delete removes a project and revokes everything it earned.
func (s *Service) Delete(ctx context.Context, id string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting project: %w", err)
	}

	res, err := s.ledger.ApplyXP(ctx, -Earned(proj.Status), source)
	if err != nil {
		if cerr := s.repo.Create(ctx, proj); cerr != nil {
			s.logger.Error("project rollback failed", "project_id", proj.ID, "error", cerr)
		}
		return nil, fmt.Errorf("revoking xp: %w", err)
	}
	return &Outcome{Project: proj, XP: res}, nil
}

func (s *Service) step(ctx context.Context, id string, dir int) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := proj.Status
	idx := stageIndex(from)
	if idx < 0 {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	next := idx + dir
	if next < 0 || next >= len(Pipeline) {
		return nil, fmt.Errorf("%w: %s has no %s stage", ErrInvalidTransition, from, direction(dir))
	}

	to := Pipeline[next]
	delta := Reward(to)
	if dir < 0 {
		delta = -Reward(from)
	}

	prev := *proj
	proj.Status = to
	proj.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, proj); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	out := &Outcome{Project: proj}
	if delta != 0 {
		res, err := s.ledger.ApplyXP(ctx, delta, source)
		if err != nil {
			if uerr := s.repo.Update(ctx, &prev); uerr != nil {
				s.logger.Error("project rollback failed", "project_id", proj.ID, "error", uerr)
			}
			return nil, fmt.Errorf("applying xp: %w", err)
		}
		out.XP = res
	}

	if s.activities != nil {
		_ = s.activities.Log(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeCardAdvanced,
			Source:       source,
			Delta:        delta,
			Summary:      fmt.Sprintf("%q %s -> %s", proj.Title, from, to),
		})
	}
	return out, nil
}

func cleanScript(in Script) (*Script, error) {
	out := Script{
		Vibe:             strings.TrimSpace(in.Vibe),
		Context:          strings.TrimSpace(in.Context),
		Goal:             strings.TrimSpace(in.Goal),
		GeneratedContent: in.GeneratedContent,
	}
	switch {
	case len(out.Vibe) > maxBriefLength, len(out.Goal) > maxBriefLength:
		return nil, fmt.Errorf("%w: vibe and goal are limited to %d characters", ErrInvalidInput, maxBriefLength)
	case len(out.Context) > maxContextLength:
		return nil, fmt.Errorf("%w: context exceeds %d characters", ErrInvalidInput, maxContextLength)
	case len(out.GeneratedContent) > maxScriptLength:
		return nil, fmt.Errorf("%w: script exceeds %d characters", ErrInvalidInput, maxScriptLength)
	}
	return &out, nil
}

func direction(dir int) string {
	if dir < 0 {
		return "previous"
	}
	return "next"
}
