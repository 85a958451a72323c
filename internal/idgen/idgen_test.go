package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestNewSyncID(t *testing.T) {
	id, err := NewSyncID()
	if err != nil {
		t.Fatalf("NewSyncID() error: %v", err)
	}
	if !strings.HasPrefix(id, "sync-") {
		t.Errorf("NewSyncID() = %q, want prefix %q", id, "sync-")
	}
	if len(id) != len("sync-")+randomLen {
		t.Errorf("NewSyncID() length = %d, want %d (id=%q)", len(id), len("sync-")+randomLen, id)
	}
}

func TestNew_Charset(t *testing.T) {
	pattern := regexp.MustCompile(`^bv-[a-zA-Z0-9]{10}$`)
	for i := 0; i < 100; i++ {
		id, err := New("bv-")
		if err != nil {
			t.Fatalf("New() error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("New() = %q, does not match expected charset pattern", id)
		}
	}
}

func TestNew_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := New("")
		if err != nil {
			t.Fatalf("New() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
