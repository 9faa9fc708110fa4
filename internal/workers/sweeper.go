// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/models"
)

// sweepTimeout bounds one sweep pass against the database.
const sweepTimeout = 30 * time.Second

// ExpirySweeper periodically transitions overdue active codes to expired and
// appends an "expired" audit entry per touched code. Expiry is also observed
// lazily on redemption reads; the sweeper guarantees the transition happens
// even for codes nobody ever attempts to redeem.
type ExpirySweeper struct {
	codes store.ActivationCodeRepository
	audit store.AuditRepository

	interval time.Duration
	logger   *logger.Logger

	// now is a hook for tests.
	now func() time.Time

	done chan struct{}
	quit chan struct{}
}

// NewExpirySweeper constructs a sweeper ticking at the given interval.
func NewExpirySweeper(codes store.ActivationCodeRepository, audit store.AuditRepository, interval time.Duration, logger *logger.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		codes:    codes,
		audit:    audit,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
}

// Run starts the sweep loop in its own goroutine.
func (s *ExpirySweeper) Run() {
	s.logger.Info().Dur("interval", s.interval).Msg("starting expiry sweeper")
	go s.loop()
}

// Stop signals the loop to finish and waits for the in-flight pass.
func (s *ExpirySweeper) Stop() {
	close(s.quit)
	<-s.done
}

func (s *ExpirySweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs one pass: every active code past its deadline becomes
// expired, and each transition is recorded in the audit trail.
func (s *ExpirySweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	ctx = s.logger.WithContext(ctx)

	ids, err := s.codes.ExpireOverdue(ctx, s.now())
	if err != nil {
		s.logger.Err(err).Msg("expiry sweep failed")
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		_, err = s.audit.Append(ctx, models.AuditLogEntry{
			CodeID:        id,
			EventType:     models.AuditExpired,
			Success:       true,
			FailureReason: "code expired",
		})
		if err != nil {
			// The state transition is already committed; a lost audit row is
			// logged rather than retried into a duplicate.
			s.logger.Err(err).Int64("code_id", id).Msg("error appending expired audit entry")
		}
	}

	s.logger.Info().Int("expired", len(ids)).Msg("expiry sweep finished")
}
