package store

import (
	"path/filepath"
	"testing"
)

// MustTempStore returns a Store backed by a database in a temporary
// directory. The Store is closed when the test finishes.
func MustTempStore(t testing.TB) Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "bootcon.db"))
	if err != nil {
		t.Fatalf("open temp store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
