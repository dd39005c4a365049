// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/olegiv/corpcms-go/internal/model"

// Action names consulted by the role policy. Handlers reference these
// constants instead of comparing role strings inline.
const (
	ActionContentRead   = "content.read"
	ActionContentCreate = "content.create"
	ActionContentUpdate = "content.update"
	ActionContentDelete = "content.delete"

	ActionUsersList          = "users.list"
	ActionUsersCreate        = "users.create"
	ActionUsersChangeRole    = "users.change_role"
	ActionUsersResetPassword = "users.reset_password"
	ActionUsersSetAvatar     = "users.set_avatar"
	ActionUsersDelete        = "users.delete"

	ActionIPManage  = "ip.manage"
	ActionAuditRead = "audit.read"
)

// policy maps each action to the set of roles permitted to perform it.
// Privilege is mostly ordered viewer < editor < admin < superadmin, but user
// management deliberately breaks the ordering: creation, deletion, role
// changes, and password resets are superadmin-only even though admin outranks
// editor elsewhere. An explicit table keeps that visible in one place.
var policy = map[string]map[string]bool{
	ActionContentRead: {
		model.RoleViewer:     true,
		model.RoleEditor:     true,
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionContentCreate: {
		model.RoleEditor:     true,
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionContentUpdate: {
		model.RoleEditor:     true,
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionContentDelete: {
		model.RoleEditor:     true,
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionUsersList: {
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionUsersCreate: {
		model.RoleSuperadmin: true,
	},
	ActionUsersChangeRole: {
		model.RoleSuperadmin: true,
	},
	ActionUsersResetPassword: {
		model.RoleSuperadmin: true,
	},
	ActionUsersSetAvatar: {
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionUsersDelete: {
		model.RoleSuperadmin: true,
	},
	ActionIPManage: {
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
	ActionAuditRead: {
		model.RoleAdmin:      true,
		model.RoleSuperadmin: true,
	},
}

// Allows reports whether role may perform action. Unknown actions and
// unknown roles are denied.
func Allows(role, action string) bool {
	roles, ok := policy[action]
	if !ok {
		return false
	}
	return roles[role]
}
