package store

import (
	"testing"
	"testing/fstest"
)

func TestParseMigrations_OrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_users.sql": {Data: []byte("CREATE TABLE b (x INT);")},
		"0001_init.sql":  {Data: []byte("CREATE TABLE a (x INT);")},
		"README.md":      {Data: []byte("ignored")},
	}
	migs, err := NewMigrator(fsys, ".").ParseMigrations()
	if err != nil {
		t.Fatalf("ParseMigrations err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("want 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "init" || migs[1].Version != 2 {
		t.Fatalf("bad order: %+v", migs)
	}
}

func TestParseMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1;")},
		"1_b.sql":    {Data: []byte("SELECT 1;")},
	}
	if _, err := NewMigrator(fsys, ".").ParseMigrations(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}
