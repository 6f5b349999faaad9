package migration_test

import (
	"slices"
	"testing"

	"github.com/j1mmie/fireway/migration"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{token: "1", want: "1.0.0", ok: true},
		{token: "1.2", want: "1.2.0", ok: true},
		{token: "1.2.3", want: "1.2.3", ok: true},
		{token: "v2", want: "2.0.0", ok: true},
		{token: "v0.0.1", want: "0.0.1", ok: true},
		{token: "1.2.3-beta", want: "1.2.3-beta", ok: true},
		{token: "1.2.3.4", ok: false},
		{token: "bogus", ok: false},
		{token: "", ok: false},
		{token: "1..2", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := migration.ParseVersion(tt.token)
			if ok != tt.ok {
				t.Fatalf("ParseVersion(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}

			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestCompareVersions_TotalOrder(t *testing.T) {
	ordered := []string{"0.0.1", "1.0.0", "1.1.0", "1.2.3-beta", "1.2.3", "2.0.0", "10.0.0"}

	for i := range ordered {
		for j := range ordered {
			got := migration.CompareVersions(ordered[i], ordered[j])

			switch {
			case i < j && got >= 0:
				t.Errorf("CompareVersions(%q, %q) = %d, want < 0", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Errorf("CompareVersions(%q, %q) = %d, want > 0", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("CompareVersions(%q, %q) = %d, want 0", ordered[i], ordered[j], got)
			}
		}
	}

	shuffled := []string{"2.0.0", "0.0.1", "1.2.3", "10.0.0", "1.0.0", "1.2.3-beta", "1.1.0"}
	slices.SortFunc(shuffled, migration.CompareVersions)

	if !slices.Equal(shuffled, ordered) {
		t.Errorf("sorted versions = %v, want %v", shuffled, ordered)
	}
}
