package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/models"
)

// whitelistService is the concrete implementation of [WhitelistService].
type whitelistService struct {
	whitelist store.WhitelistRepository
	directory adapter.DirectoryClient
	logger    *logger.Logger
}

// NewWhitelistService constructs a [WhitelistService] over the repository
// and the upstream directory.
func NewWhitelistService(whitelist store.WhitelistRepository, directory adapter.DirectoryClient, logger *logger.Logger) WhitelistService {
	return &whitelistService{
		whitelist: whitelist,
		directory: directory,
		logger:    logger,
	}
}

// Create registers a new pre-authorisation entry.
//
// The role↔supervisor invariant is enforced here as well as at generation
// time: a field-agent entry must reference a supervisor that resolves
// upstream to an active supervising user; any other role must not carry one.
func (s *whitelistService) Create(ctx context.Context, accessToken string, req models.CreateWhitelistRequest) (models.WhitelistEntry, error) {
	log := logger.FromContext(ctx)

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return models.WhitelistEntry{}, fmt.Errorf("%w: identifier is required", ErrValidation)
	}
	if !req.IdentifierType.Valid() {
		return models.WhitelistEntry{}, fmt.Errorf("%w: unknown identifier type %q", ErrValidation, req.IdentifierType)
	}
	if !req.Role.Valid() {
		return models.WhitelistEntry{}, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	switch {
	case req.Role == models.RoleFieldAgent:
		if err := s.checkSupervisor(ctx, accessToken, req.SupervisorID); err != nil {
			return models.WhitelistEntry{}, err
		}
	case req.SupervisorID != nil:
		return models.WhitelistEntry{}, fmt.Errorf("%w: only field agents carry a supervisor", ErrValidation)
	}

	entry, err := s.whitelist.Create(ctx, models.WhitelistEntry{
		Identifier:     identifier,
		IdentifierType: req.IdentifierType,
		FullName:       strings.TrimSpace(req.FullName),
		Role:           req.Role,
		SupervisorID:   req.SupervisorID,
		Notes:          req.Notes,
	})
	if err != nil {
		log.Err(err).Msg("whitelist entry creation failed")
		return models.WhitelistEntry{}, fmt.Errorf("whitelist entry creation failed: %w", err)
	}

	log.Info().Int64("whitelist_id", entry.ID).Str("role", string(entry.Role)).Msg("whitelist entry created")

	return entry, nil
}

func (s *whitelistService) checkSupervisor(ctx context.Context, accessToken string, supervisorID *int64) error {
	if supervisorID == nil {
		return ErrSupervisorRequired
	}

	profile, err := s.directory.GetUser(ctx, accessToken, *supervisorID)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			return fmt.Errorf("%w: supervisor %d not found", ErrSupervisorRequired, *supervisorID)
		}
		return fmt.Errorf("supervisor lookup failed: %w", err)
	}
	if !profile.IsActive || !profile.Role.CanSupervise() {
		return fmt.Errorf("%w: user %d cannot supervise", ErrSupervisorRequired, *supervisorID)
	}

	return nil
}

// Get returns one entry by id.
func (s *whitelistService) Get(ctx context.Context, id int64) (models.WhitelistEntry, error) {
	return s.whitelist.GetByID(ctx, id)
}

// List returns all entries, newest first.
func (s *whitelistService) List(ctx context.Context) ([]models.WhitelistEntry, error) {
	return s.whitelist.List(ctx)
}
