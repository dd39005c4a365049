// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "corpcms-logging-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB("sqlite", dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db, "sqlite"); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}

	return db, cleanup
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Error("database connection failed", "host", "localhost")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelError)
	}
	if events[0].Message != "database connection failed" {
		t.Errorf("Message = %q, want %q", events[0].Message, "database connection failed")
	}
}

func TestEventLogHandler_InfoNotPersisted(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Info("routine startup message")

	events := listEvents(t, db)
	if len(events) != 0 {
		t.Fatalf("expected 0 events for INFO, got %d", len(events))
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Warn("entry rejected",
		"category", model.EventCategoryIPACL,
		"user_id", int64(7),
		"ip", "203.0.113.9",
	)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Category != model.EventCategoryIPACL {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategoryIPACL)
	}
	if !e.UserID.Valid || e.UserID.Int64 != 7 {
		t.Errorf("UserID = %+v, want 7", e.UserID)
	}
	if e.IPAddress != "203.0.113.9" {
		t.Errorf("IPAddress = %q, want 203.0.113.9", e.IPAddress)
	}
}

func TestEventLogHandler_InferredCategory(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Warn("login attempt with invalid password")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryAuth {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryAuth)
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Warn("slow query detected", "duration_ms", 5000)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Metadata != `{"duration_ms":"5000"}` {
		t.Errorf("Metadata = %q, want duration_ms entry", events[0].Metadata)
	}
}
