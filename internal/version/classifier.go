// Package version classifies Docker image tag strings. It decides whether a
// tag names a release at all, and whether a candidate tag belongs to the same
// naming family as the tag a container currently runs. Both predicates are
// pure string checks; no semantic version ordering is performed here.
package version

import (
	"regexp"
	"strings"
)

var (
	// Numeric release pattern: optional leading "v", one or more
	// dot-separated non-negative integers, optional "-suffix"
	// (e.g. "1", "v1.2", "1.2.3-alpha").
	numericPattern = regexp.MustCompile(`^v?\d+(?:\.\d+)*(?:-[A-Za-z0-9._-]+)?$`)

	// Calendar release pattern: YYYY.MM or YYYY.MM.N (e.g. "2023.01", "2023.01.5").
	calendarPattern = regexp.MustCompile(`^\d{4}\.\d{1,2}(?:\.\d+)?$`)

	// Compact date pattern: eight digits (e.g. "20230101").
	compactDatePattern = regexp.MustCompile(`^\d{8}$`)
)

// IsVersionTag reports whether tag looks like a release version rather than a
// floating or opaque tag. Tags like "latest", "stable", "main" or commit
// hashes fail every pattern and are never update candidates.
func IsVersionTag(tag string) bool {
	if tag == "" {
		return false
	}
	return numericPattern.MatchString(tag) ||
		calendarPattern.MatchString(tag) ||
		compactDatePattern.MatchString(tag)
}

// SameFamily reports whether candidate is an acceptable replacement for
// reference based on their naming scheme. A purely numeric reference
// ("14") only accepts purely numeric candidates, so a user pinned to plain
// numbers is never offered "14-alpine". A mixed reference (one that carries
// letters, like "14-alpine") accepts any candidate.
//
// The check is deliberately asymmetric and is not a version comparison:
// SameFamily("15", "14-alpine") is true even though the reverse is false.
func SameFamily(candidate, reference string) bool {
	if isNumericOnly(reference) {
		return isNumericOnly(candidate)
	}
	return true
}

// isNumericOnly reports whether s contains no ASCII letters.
func isNumericOnly(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
}
