package migration

import (
	"strings"

	"golang.org/x/mod/semver"
)

// ParseVersion leniently coerces a filename version token into a canonical
// semantic version without the "v" prefix. Partial forms are accepted and
// normalized: "1" and "v1.2" become "1.0.0" and "1.2.0". Prerelease
// suffixes are preserved ("1.2.0-beta"). The second return value reports
// whether the token was parseable at all.
func ParseVersion(token string) (string, bool) {
	s := strings.TrimSpace(token)
	if len(s) == 0 {
		return "", false
	}

	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}

	if !semver.IsValid(s) {
		return "", false
	}

	return strings.TrimPrefix(semver.Canonical(s), "v"), true
}

// CompareVersions orders two canonical versions by semantic-version
// precedence: major, minor, patch, then prerelease tie-break.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}
