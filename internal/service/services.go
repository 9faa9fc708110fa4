package service

import (
	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
)

// Services aggregates the domain services the transport layer depends on.
type Services struct {
	Activation ActivationService
	Whitelist  WhitelistService
	Audit      AuditService
}

// NewServices wires the domain services over the repositories and the
// upstream platform adapter.
func NewServices(repos *store.Repositories, platform adapter.PlatformAdapter, cfg config.Activation, logger *logger.Logger) *Services {
	return &Services{
		Activation: NewActivationService(repos, platform, cfg, logger),
		Whitelist:  NewWhitelistService(repos.Whitelist, platform, logger),
		Audit:      NewAuditService(repos.Audit, logger),
	}
}
