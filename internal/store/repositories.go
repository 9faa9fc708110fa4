package store

import "github.com/fieldscope/survey-console/internal/logger"

// Repositories aggregates every persistence interface the service layer
// depends on.
type Repositories struct {
	Whitelist WhitelistRepository
	Codes     ActivationCodeRepository
	Audit     AuditRepository
}

// NewRepositories wires the PostgreSQL-backed repository implementations.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		Whitelist: NewWhitelistRepository(db, log),
		Codes:     NewActivationCodeRepository(db, log),
		Audit:     NewAuditRepository(db, log),
	}
}
