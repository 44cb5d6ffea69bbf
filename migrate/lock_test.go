package migrate

import (
	"context"
	"testing"
)

func TestLocalLock_AcquireRelease(t *testing.T) {
	lock := &LocalLock{}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		release, err := lock.Acquire(ctx, "test_lock")
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		release()
	}
}

func TestLocalLock_CancelledContext(t *testing.T) {
	lock := &LocalLock{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lock.Acquire(ctx, "test_lock"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestHashLockKey(t *testing.T) {
	cases := []struct {
		key1 string
		key2 string
		same bool
	}{
		{"schema_migrate", "schema_migrate", true},
		{"key_a", "key_b", false},
		{"", "", true},
	}

	for _, tt := range cases {
		h1 := hashLockKey(tt.key1)
		h2 := hashLockKey(tt.key2)
		if (h1 == h2) != tt.same {
			t.Errorf("hashLockKey(%q) == hashLockKey(%q): got %v, want %v", tt.key1, tt.key2, h1 == h2, tt.same)
		}
		if h1 < 0 || h2 < 0 {
			t.Errorf("lock ids must be non-negative, got %d and %d", h1, h2)
		}
	}
}

func TestLocker_Implementations(t *testing.T) {
	var _ Locker = (*PostgresLock)(nil)
	var _ Locker = (*LocalLock)(nil)
}
