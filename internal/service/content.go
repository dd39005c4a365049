// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Body formats accepted for posts and products.
const (
	BodyFormatHTML     = "html"
	BodyFormatMarkdown = "markdown"
)

// htmlSanitizer strips script tags, event handlers, and other dangerous
// markup from stored bodies while keeping the usual formatting tags.
var htmlSanitizer = bluemonday.UGCPolicy()

// SanitizeHTML cleans an HTML fragment for storage and delivery.
func SanitizeHTML(input string) string {
	return htmlSanitizer.Sanitize(input)
}

// RenderBody converts a stored body to sanitized HTML according to its
// format. Markdown is converted first, then both formats pass through the
// sanitizer.
func RenderBody(body, format string) (string, error) {
	switch format {
	case BodyFormatMarkdown:
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		return htmlSanitizer.Sanitize(buf.String()), nil
	case BodyFormatHTML, "":
		return htmlSanitizer.Sanitize(body), nil
	default:
		return "", fmt.Errorf("unknown body format %q", format)
	}
}

// IsValidBodyFormat reports whether format is an accepted body format.
func IsValidBodyFormat(format string) bool {
	return format == BodyFormatHTML || format == BodyFormatMarkdown
}
