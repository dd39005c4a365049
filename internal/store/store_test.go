// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "corpcms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB("sqlite", dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db, "sqlite"); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

// testUser creates a throwaway account for rows that need an author.
func testUser(t *testing.T, q *Queries, email string) User {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         "editor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "test@example.com",
		PasswordHash: "hashed-password",
		Name:         "Test User",
		Role:         "editor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if user.Role != "editor" {
		t.Errorf("Role = %q, want %q", user.Role, "editor")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	_, err := q.GetUserByEmail(ctx, "nonexistent@example.com")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "role@example.com")

	err := q.UpdateUserRole(ctx, UpdateUserRoleParams{
		Role:      "admin",
		UpdatedAt: time.Now(),
		ID:        user.ID,
	})
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	found, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if found.Role != "admin" {
		t.Errorf("Role = %q, want admin", found.Role)
	}
}

func TestDeleteUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "delete@example.com")

	if err := q.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	_, err := q.GetUserByID(ctx, user.ID)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	// First seed should create the superadmin
	if err := Seed(ctx, db, "seed-hash"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if admin.Role != "superadmin" {
		t.Errorf("Role = %q, want superadmin", admin.Role)
	}

	// Second seed should skip
	if err := Seed(ctx, db, "seed-hash"); err != nil {
		t.Fatalf("Second Seed: %v", err)
	}

	count, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (seed should skip if exists)", count)
	}
}

// IP guard settings tests

func TestIPSettingsSingleton(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	// Migration seeds the row disabled
	settings, err := q.GetIPSettings(ctx)
	if err != nil {
		t.Fatalf("GetIPSettings: %v", err)
	}
	if settings.Enabled {
		t.Error("guard should start disabled")
	}

	err = q.UpdateIPSettings(ctx, UpdateIPSettingsParams{Enabled: true, UpdatedAt: time.Now()})
	if err != nil {
		t.Fatalf("UpdateIPSettings: %v", err)
	}

	settings, err = q.GetIPSettings(ctx)
	if err != nil {
		t.Fatalf("GetIPSettings: %v", err)
	}
	if !settings.Enabled {
		t.Error("guard should be enabled after update")
	}
}

func TestIPWhitelist(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	entry, err := q.CreateIPWhitelistEntry(ctx, CreateIPWhitelistEntryParams{
		IP:        "203.0.113.10",
		Label:     "HQ office",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateIPWhitelistEntry: %v", err)
	}
	if entry.ID == 0 {
		t.Error("entry.ID should not be 0")
	}

	ok, err := q.IsIPWhitelisted(ctx, "203.0.113.10")
	if err != nil {
		t.Fatalf("IsIPWhitelisted: %v", err)
	}
	if !ok {
		t.Error("203.0.113.10 should be whitelisted")
	}

	ok, err = q.IsIPWhitelisted(ctx, "203.0.113.99")
	if err != nil {
		t.Fatalf("IsIPWhitelisted: %v", err)
	}
	if ok {
		t.Error("203.0.113.99 should not be whitelisted")
	}

	count, err := q.CountIPWhitelist(ctx)
	if err != nil {
		t.Fatalf("CountIPWhitelist: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	if err := q.DeleteIPWhitelistEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteIPWhitelistEntry: %v", err)
	}
	count, _ = q.CountIPWhitelist(ctx)
	if count != 0 {
		t.Errorf("count = %d, want 0 after delete", count)
	}
}

// Audit log tests

func TestAuditLogAppendAndList(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := q.CreateAuditEntry(ctx, CreateAuditEntryParams{
			ContentType: "post",
			ContentID:   int64(i + 1),
			Action:      "CREATE",
			ActorID:     1,
			ActorName:   "Admin",
			AfterData:   sql.NullString{String: `{"title":"x"}`, Valid: true},
			IPAddress:   "127.0.0.1",
			UserAgent:   "test",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateAuditEntry: %v", err)
		}
	}
	err := q.CreateAuditEntry(ctx, CreateAuditEntryParams{
		ContentType: "product",
		ContentID:   1,
		Action:      "DELETE",
		ActorID:     1,
		ActorName:   "Admin",
		BeforeData:  sql.NullString{String: `{"name":"y"}`, Valid: true},
		CreatedAt:   base.Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateAuditEntry: %v", err)
	}

	// Unfiltered, newest first
	entries, err := q.ListAuditEntries(ctx, ListAuditEntriesParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	if entries[0].ContentType != "product" {
		t.Errorf("first entry ContentType = %q, want product (newest first)", entries[0].ContentType)
	}

	// Filtered by content type
	entries, err = q.ListAuditEntries(ctx, ListAuditEntriesParams{ContentType: "post", Limit: 10})
	if err != nil {
		t.Fatalf("ListAuditEntries filtered: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("len(entries) = %d, want 3", len(entries))
	}

	count, err := q.CountAuditEntries(ctx, "post")
	if err != nil {
		t.Fatalf("CountAuditEntries: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

// Post CRUD tests

func TestCreatePost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "author@example.com")

	now := time.Now()
	post, err := q.CreatePost(ctx, CreatePostParams{
		Title:      "Factory Expansion",
		Slug:       "factory-expansion",
		Body:       "<p>News body</p>",
		BodyFormat: "html",
		Lang:       "en",
		Category:   "news",
		AuthorID:   user.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if post.ID == 0 {
		t.Error("post.ID should not be 0")
	}
	if post.Title != "Factory Expansion" {
		t.Errorf("Title = %q, want %q", post.Title, "Factory Expansion")
	}
	if post.Views != 0 {
		t.Errorf("Views = %d, want 0", post.Views)
	}
}

func TestUpdatePost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "author@example.com")

	now := time.Now()
	created, err := q.CreatePost(ctx, CreatePostParams{
		Title: "Original", Slug: "original", BodyFormat: "html", Lang: "en",
		AuthorID: user.ID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	err = q.UpdatePost(ctx, UpdatePostParams{
		Title: "Updated", Slug: "updated", Body: "<p>new</p>", BodyFormat: "html",
		Lang: "ko", Category: "press", SortOrder: 5, UpdatedAt: time.Now(), ID: created.ID,
	})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}

	found, err := q.GetPostByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if found.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", found.Title)
	}
	if found.Lang != "ko" {
		t.Errorf("Lang = %q, want ko", found.Lang)
	}
	if found.SortOrder != 5 {
		t.Errorf("SortOrder = %d, want 5", found.SortOrder)
	}
}

func TestListPostsFilters(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "author@example.com")

	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := q.CreatePost(ctx, CreatePostParams{
			Title: fmt.Sprintf("English Post %d", i), Slug: fmt.Sprintf("en-%d", i),
			BodyFormat: "html", Lang: "en", Category: "news",
			AuthorID: user.ID, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}
	_, err := q.CreatePost(ctx, CreatePostParams{
		Title: "Korean Post", Slug: "ko-1", BodyFormat: "html", Lang: "ko",
		Category: "press", AuthorID: user.ID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := q.ListPosts(ctx, ContentFilter{Lang: "en", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("len(posts) = %d, want 3", len(posts))
	}

	posts, err = q.ListPosts(ctx, ContentFilter{Category: "press", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts category: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(posts))
	}

	posts, err = q.ListPosts(ctx, ContentFilter{Search: "Korean", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts search: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(posts))
	}

	count, err := q.CountPosts(ctx, ContentFilter{Lang: "en"})
	if err != nil {
		t.Fatalf("CountPosts: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestIncrementPostViews(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "author@example.com")

	now := time.Now()
	post, err := q.CreatePost(ctx, CreatePostParams{
		Title: "Counted", Slug: "counted", BodyFormat: "html", Lang: "en",
		AuthorID: user.ID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := q.IncrementPostViews(ctx, post.ID); err != nil {
			t.Fatalf("IncrementPostViews: %v", err)
		}
	}

	found, _ := q.GetPostByID(ctx, post.ID)
	if found.Views != 3 {
		t.Errorf("Views = %d, want 3", found.Views)
	}
}

// Recruit soft-delete tests

func TestDeactivateRecruitPost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := testUser(t, q, "hr@example.com")

	now := time.Now()
	post, err := q.CreateRecruitPost(ctx, CreateRecruitPostParams{
		Title: "Systems Engineer", Body: "Full time", Lang: "en",
		PositionType: "engineering", AuthorID: user.ID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateRecruitPost: %v", err)
	}
	if !post.IsActive {
		t.Error("new recruit post should be active")
	}

	if err := q.DeactivateRecruitPost(ctx, post.ID, time.Now()); err != nil {
		t.Fatalf("DeactivateRecruitPost: %v", err)
	}

	// Row survives, just inactive
	found, err := q.GetRecruitPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetRecruitPostByID: %v", err)
	}
	if found.IsActive {
		t.Error("post should be inactive after deactivation")
	}

	active, err := q.ListRecruitPosts(ctx, RecruitFilter{ActiveOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("ListRecruitPosts: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("len(active) = %d, want 0", len(active))
	}

	all, err := q.ListRecruitPosts(ctx, RecruitFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListRecruitPosts all: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(all) = %d, want 1", len(all))
	}
}

// View dedup ledger tests

func TestViewHitsWindow(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	err := q.CreateViewHit(ctx, CreateViewHitParams{
		ResourceType: "post", ResourceID: 1, IP: "203.0.113.5",
		UAHash: "abc123", SeenAt: now.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateViewHit: %v", err)
	}

	// Inside the window
	n, err := q.CountRecentViewHits(ctx, CountRecentViewHitsParams{
		ResourceType: "post", ResourceID: 1, IP: "203.0.113.5",
		UAHash: "abc123", Since: now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CountRecentViewHits: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}

	// Outside the window
	n, err = q.CountRecentViewHits(ctx, CountRecentViewHitsParams{
		ResourceType: "post", ResourceID: 1, IP: "203.0.113.5",
		UAHash: "abc123", Since: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CountRecentViewHits: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}

	// Different UA hash, same IP
	n, err = q.CountRecentViewHits(ctx, CountRecentViewHitsParams{
		ResourceType: "post", ResourceID: 1, IP: "203.0.113.5",
		UAHash: "other", Since: now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CountRecentViewHits: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0 for different ua hash", n)
	}

	removed, err := q.DeleteOldViewHits(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldViewHits: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

// Traffic report tests

func TestTrafficAggregation(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	rows := []CreateTrafficEntryParams{
		{Path: "/products", CountryCode: "US", Browser: "Chrome", CreatedAt: now},
		{Path: "/products", CountryCode: "US", Browser: "Firefox", CreatedAt: now},
		{Path: "/news", CountryCode: "KR", Browser: "Chrome", CreatedAt: now},
		{Path: "/old", CountryCode: "DE", Browser: "Chrome", CreatedAt: now.Add(-48 * time.Hour)},
	}
	for _, r := range rows {
		if err := q.CreateTrafficEntry(ctx, r); err != nil {
			t.Fatalf("CreateTrafficEntry: %v", err)
		}
	}

	since := now.Add(-24 * time.Hour)

	total, err := q.CountTrafficSince(ctx, since)
	if err != nil {
		t.Fatalf("CountTrafficSince: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	countries, err := q.TrafficByCountry(ctx, since, 10)
	if err != nil {
		t.Fatalf("TrafficByCountry: %v", err)
	}
	if len(countries) != 2 {
		t.Fatalf("len(countries) = %d, want 2", len(countries))
	}
	if countries[0].Key != "US" || countries[0].Count != 2 {
		t.Errorf("top country = %+v, want US with 2", countries[0])
	}

	paths, err := q.TrafficByPath(ctx, since, 10)
	if err != nil {
		t.Fatalf("TrafficByPath: %v", err)
	}
	if paths[0].Key != "/products" {
		t.Errorf("top path = %q, want /products", paths[0].Key)
	}

	removed, err := q.DeleteOldTraffic(ctx, since)
	if err != nil {
		t.Fatalf("DeleteOldTraffic: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
