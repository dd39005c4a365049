// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"

	"github.com/olegiv/corpcms-go/internal/model"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		role   string
		action string
		want   bool
	}{
		// Content: viewer reads, editor+ mutates
		{model.RoleViewer, ActionContentRead, true},
		{model.RoleViewer, ActionContentCreate, false},
		{model.RoleViewer, ActionContentDelete, false},
		{model.RoleEditor, ActionContentCreate, true},
		{model.RoleEditor, ActionContentUpdate, true},
		{model.RoleAdmin, ActionContentDelete, true},
		{model.RoleSuperadmin, ActionContentCreate, true},

		// User management: superadmin-specific, NOT "at least admin"
		{model.RoleAdmin, ActionUsersCreate, false},
		{model.RoleAdmin, ActionUsersDelete, false},
		{model.RoleAdmin, ActionUsersResetPassword, false},
		{model.RoleAdmin, ActionUsersChangeRole, false},
		{model.RoleSuperadmin, ActionUsersCreate, true},
		{model.RoleSuperadmin, ActionUsersDelete, true},
		{model.RoleSuperadmin, ActionUsersResetPassword, true},

		// Admin surfaces
		{model.RoleAdmin, ActionUsersList, true},
		{model.RoleEditor, ActionUsersList, false},
		{model.RoleAdmin, ActionIPManage, true},
		{model.RoleEditor, ActionIPManage, false},
		{model.RoleAdmin, ActionAuditRead, true},
		{model.RoleViewer, ActionAuditRead, false},

		// Unknowns denied
		{"unknown", ActionContentRead, false},
		{"", ActionContentRead, false},
		{model.RoleSuperadmin, "unknown.action", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.action, func(t *testing.T) {
			if got := Allows(tt.role, tt.action); got != tt.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestAllows_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if !Allows(model.RoleSuperadmin, ActionUsersDelete) {
			t.Fatal("Allows changed result between calls")
		}
		if Allows(model.RoleViewer, ActionUsersDelete) {
			t.Fatal("Allows changed result between calls")
		}
	}
}
