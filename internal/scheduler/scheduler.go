// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: traffic log retention,
// view-dedup ledger cleanup, and GeoIP database reloads.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/corpcms-go/internal/geoip"
	"github.com/olegiv/corpcms-go/internal/service"
	"github.com/olegiv/corpcms-go/internal/store"
)

// Scheduler owns the cron instance for background maintenance jobs.
type Scheduler struct {
	queries       *store.Queries
	resolver      *geoip.Resolver
	cron          *cron.Cron
	logger        *slog.Logger
	retentionDays int
}

// New creates a scheduler. retentionDays bounds how long traffic log rows
// are kept; resolver may be disabled when GeoIP is not configured.
func New(db *sql.DB, resolver *geoip.Resolver, retentionDays int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queries:       store.New(db),
		resolver:      resolver,
		cron:          cron.New(),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the maintenance jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Purge expired traffic rows nightly.
	if _, err := s.cron.AddFunc("15 3 * * *", func() {
		if err := s.purgeTraffic(); err != nil {
			s.logger.Error("traffic retention purge failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Dedup ledger rows are useless past the dedup window; sweep hourly.
	if _, err := s.cron.AddFunc("@hourly", func() {
		if err := s.purgeViewHits(); err != nil {
			s.logger.Error("view hit purge failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Pick up replaced GeoIP database files without a restart.
	if _, err := s.cron.AddFunc("@every 6h", func() {
		if err := s.resolver.Reload(); err != nil {
			s.logger.Error("geoip reload failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish and stops the cron loop.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) purgeTraffic() error {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.queries.DeleteOldTraffic(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("purged expired traffic rows", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}

func (s *Scheduler) purgeViewHits() error {
	cutoff := time.Now().Add(-service.DedupWindow)

	deleted, err := s.queries.DeleteOldViewHits(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("purged expired view hits", "deleted", deleted)
	}
	return nil
}
