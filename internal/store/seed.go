// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
)

// Default superadmin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminName     = "Administrator"
	DefaultAdminPassword = "ChangeMe12345!"
)

// Seed creates the initial superadmin account if no user with the default
// email exists. The caller supplies the password hash so this package stays
// free of the hashing dependency.
func Seed(ctx context.Context, db *sql.DB, passwordHash string) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("superadmin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for superadmin user: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleSuperadmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating superadmin user: %w", err)
	}

	slog.Info("created default superadmin user",
		"id", user.ID,
		"email", user.Email,
	)

	return nil
}
