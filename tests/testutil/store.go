package testutil

import (
	"testing"

	"github.com/nhle/taskclient/internal/store"
)

// NewTestStore creates an in-memory activity log with all migrations
// applied. It is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory activity log: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing activity log: %v", err)
		}
	})

	return s
}
