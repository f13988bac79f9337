package shared

import "testing"

func TestNewDatabase(t *testing.T) {
	t.Run("opens and bounds the connection pool", func(t *testing.T) {
		db, err := NewDatabase(":memory:", 1, 1)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("max open connections = %d, want 1", got)
		}
	})

	t.Run("unreachable path errors", func(t *testing.T) {
		if _, err := NewDatabase("/does-not-exist/harmony.db", 1, 1); err == nil {
			t.Error("expected error for unreachable path")
		}
	})
}
