package model

import (
	"regexp"
	"strings"
)

var (
	versionTokens = regexp.MustCompile(`\s*\d+(\.\d+)*\s*`)
	bundleSuffix  = regexp.MustCompile(`(?i)\.(exe|app|dmg)$`)
)

// CleanAppName produces the canonical activity name for a raw
// application/window identifier: version-number tokens and a trailing
// executable/bundle extension are stripped, then surrounding whitespace is
// trimmed. "Chrome 119.0.2" and "Chrome 120.1" both map to "Chrome".
// The function is deterministic and idempotent.
func CleanAppName(name string) string {
	cleaned := versionTokens.ReplaceAllString(name, "")
	cleaned = bundleSuffix.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
