package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestNew_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Touch the file so the docker mount check passes either way.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch db file: %v", err)
	}

	viper.Set("db.driver", "sqlite")
	viper.Set("db.dsn", path)
	t.Cleanup(viper.Reset)

	conn, err := New()
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := conn.Exec(`CREATE TABLE t (id integer primary key)`).Error; err != nil {
		t.Fatalf("exec: %v", err)
	}
}
