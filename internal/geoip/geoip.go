// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor IPs to countries for the traffic reports,
// backed by a MaxMind GeoLite2-Country database file.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

var privateCIDRs []*net.IPNet

func init() {
	blocks := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",  // IPv6 unique local
		"fe80::/10", // IPv6 link-local
	}

	for _, block := range blocks {
		_, cidr, err := net.ParseCIDR(block)
		if err == nil {
			privateCIDRs = append(privateCIDRs, cidr)
		}
	}
}

// Resolver maps IP addresses to ISO country codes.
type Resolver struct {
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
	enabled   bool
	mu        sync.RWMutex
}

// countryRecord matches the GeoLite2-Country database structure.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewResolver creates a resolver for the given database path. An empty path
// disables lookups without error; a missing or unreadable file returns an
// error so the caller can log it and continue degraded.
func NewResolver(dbPath string) (*Resolver, error) {
	r := &Resolver{dbPath: dbPath}
	if dbPath == "" {
		return r, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r, r.loadDatabase()
}

// loadDatabase loads or reloads the MaxMind database.
// Caller must hold the write lock.
func (r *Resolver) loadDatabase() error {
	info, err := os.Stat(r.dbPath)
	if err != nil {
		r.enabled = false
		if os.IsNotExist(err) {
			return fmt.Errorf("geoip database not found: %s", r.dbPath)
		}
		return fmt.Errorf("geoip database stat: %w", err)
	}

	// Skip reload if not modified
	if r.db != nil && info.ModTime().Equal(r.dbModTime) {
		return nil
	}

	if r.db != nil {
		_ = r.db.Close()
		r.db = nil
	}

	db, err := maxminddb.Open(r.dbPath)
	if err != nil {
		r.enabled = false
		return fmt.Errorf("opening geoip database: %w", err)
	}

	r.db = db
	r.dbModTime = info.ModTime()
	r.enabled = true

	return nil
}

// Reload reloads the database file if it has changed on disk. Safe to call
// periodically from the scheduler.
func (r *Resolver) Reload() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dbPath == "" {
		return nil
	}

	return r.loadDatabase()
}

// Country returns the 2-letter ISO country code for an IP address, "LOCAL"
// for private and loopback addresses, and "" when the IP is invalid or the
// database is unavailable.
func (r *Resolver) Country(ip string) string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	if parsed.IsLoopback() || isPrivateIP(parsed) {
		return "LOCAL"
	}

	if !r.enabled || r.db == nil {
		return ""
	}

	var record countryRecord
	if err := r.db.Lookup(parsed, &record); err != nil {
		return ""
	}

	return record.Country.ISOCode
}

// IsEnabled reports whether lookups are available.
func (r *Resolver) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Close closes the database file.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		r.enabled = false
		return err
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
