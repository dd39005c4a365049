// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and types shared across the
// application: user roles, audit actions, and content resource names.
package model

// User roles, in ascending order of privilege. Some actions (user management,
// password resets) are restricted to superadmin specifically rather than
// "at least admin"; see auth.Allows.
const (
	RoleViewer     = "viewer"
	RoleEditor     = "editor"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRoles lists every role accepted on user create/role-change.
var ValidRoles = []string{RoleViewer, RoleEditor, RoleAdmin, RoleSuperadmin}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaffRole reports whether role belongs to back-office staff. Staff
// requests never increment public view counters.
func IsStaffRole(role string) bool {
	return role == RoleEditor || role == RoleAdmin || role == RoleSuperadmin
}
