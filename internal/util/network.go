// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including client IP
// derivation, URL slug generation, and sql null type helpers.
package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP derives the client IP address for a request. It prefers the
// X-Real-IP header, then the first hop of X-Forwarded-For, then the socket
// address. The result is normalized with NormalizeIP. Returns an empty string
// when no address can be determined; callers guarding by IP must treat that
// as a denial (fail closed).
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return NormalizeIP(ip)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx > 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return NormalizeIP(ip)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (seen in tests and some proxies)
		host = r.RemoteAddr
	}
	return NormalizeIP(host)
}

// NormalizeIP canonicalizes an IP string for whitelist comparison:
// brackets are stripped, the IPv4-mapped IPv6 prefix (::ffff:) is removed,
// and loopback is normalized to 127.0.0.1. Returns an empty string for
// input that does not parse as an IP address.
func NormalizeIP(s string) string {
	s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(s), "]"), "[")
	s = strings.TrimPrefix(s, "::ffff:")

	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}

	if ip.IsLoopback() {
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}

// IsValidIP reports whether s parses as an IPv4 or IPv6 address.
// Used to validate whitelist entries before they are stored.
func IsValidIP(s string) bool {
	return net.ParseIP(strings.TrimSpace(s)) != nil
}
