package cmdbsvc

import (
	"testing"

	models "meta_cmdb/internal/api/cmdb/models"
)

func TestBumpVersion(t *testing.T) {
	t.Run("increments patch", func(t *testing.T) {
		if got := bumpVersion("1.0.0"); got != "1.0.1" {
			t.Fatalf("bumpVersion(1.0.0) = %q, want 1.0.1", got)
		}
		if got := bumpVersion("2.13.9"); got != "2.13.10" {
			t.Fatalf("bumpVersion(2.13.9) = %q, want 2.13.10", got)
		}
	})

	t.Run("keeps major and minor", func(t *testing.T) {
		if got := bumpVersion("3.7.0"); got != "3.7.1" {
			t.Fatalf("bumpVersion(3.7.0) = %q, want 3.7.1", got)
		}
	})

	t.Run("resets malformed input to the default", func(t *testing.T) {
		for _, in := range []string{"", "1.0", "1.0.0.0", "1.0.x", "abc"} {
			if got := bumpVersion(in); got != models.DefaultVersion {
				t.Fatalf("bumpVersion(%q) = %q, want %q", in, got, models.DefaultVersion)
			}
		}
	})
}
