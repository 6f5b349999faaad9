package migration

import (
	//nolint:gosec // SHA-1 is used for change detection, not security.
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/j1mmie/fireway/fireerrors"
)

// separator splits a migration filename into its version and description
// tokens, e.g. "v1.2__add-users.go".
const separator = "__"

// Logger receives resolver warnings about skipped files.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Resolve scans the migration directory (flat, non-recursive) and returns
// the discovered units sorted ascending by version.
//
// Files are classified by their name, with the extension stripped:
//   - hidden files and subdirectories are ignored;
//   - no parseable version and no description: silently skipped;
//   - no parseable version but a description: skipped with a warning;
//   - parseable version without a description: fatal;
//   - duplicate versions across two files: fatal.
//
// Any fatal condition aborts resolution before any unit executes.
func Resolve(dir string, log Logger) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var (
		units []Unit
		byVer = make(map[string]string) // version -> filename
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		verToken, description, _ := strings.Cut(base, separator)

		version, ok := ParseVersion(verToken)
		if !ok {
			if len(description) > 0 {
				log.Warnf("skipping %q: %q is not a valid version\n", name, verToken)
			} else {
				log.Debugf("ignoring %q: not a migration file\n", name)
			}

			continue
		}

		if len(description) == 0 {
			return nil, fmt.Errorf("%q: %w", name, fireerrors.ErrInvalidFilename)
		}

		if prev, dup := byVer[version]; dup {
			return nil, fmt.Errorf("%w: %s in both %q and %q", fireerrors.ErrDuplicateVersion, version, prev, name)
		}

		byVer[version] = name

		path := filepath.Join(dir, name)

		checksum, err := checksumFile(path)
		if err != nil {
			return nil, err
		}

		units = append(units, Unit{
			Version:     version,
			Description: description,
			Filename:    name,
			Path:        path,
			Checksum:    checksum,
		})
	}

	slices.SortFunc(units, func(a, b Unit) int {
		return CompareVersions(a.Version, b.Version)
	})

	return units, nil
}

func checksumFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read migration script: %w", err)
	}

	//nolint:gosec // change detection only.
	sum := sha1.Sum(content)

	return hex.EncodeToString(sum[:]), nil
}
