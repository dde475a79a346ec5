package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func tempSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{
		"memory": NewMemory(),
		"sqlite": tempSQLite(t),
	}
	if url := os.Getenv("MINDSENSE_TEST_REDIS_URL"); url != "" {
		r, err := ConnectRedis(context.Background(), url)
		if err != nil {
			t.Fatalf("ConnectRedis: %v", err)
		}
		t.Cleanup(func() { r.Close() })
		out["redis"] = r
	}
	return out
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			prefix := "kvtest." + name + "."
			if _, err := s.Get(ctx, prefix+"missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, prefix+"b", []byte("two")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, prefix+"a", []byte("one")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, prefix+"a", []byte("uno")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if err := s.Set(ctx, "other.key", []byte("x")); err != nil {
				t.Fatalf("Set: %v", err)
			}

			v, err := s.Get(ctx, prefix+"a")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(v) != "uno" {
				t.Fatalf("expected uno, got %q", v)
			}

			keys, err := s.Keys(ctx, prefix)
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if len(keys) != 2 || keys[0] != prefix+"a" || keys[1] != prefix+"b" {
				t.Fatalf("unexpected keys: %v", keys)
			}

			if err := s.Delete(ctx, prefix+"a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, prefix+"a"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, prefix+"a"); err != nil {
				t.Fatalf("deleting a missing key should be a no-op: %v", err)
			}
			s.Delete(ctx, prefix+"b")
			s.Delete(ctx, "other.key")
		})
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, err := s.Get(ctx, "k")
	if err != nil || string(v) != "v" {
		t.Fatalf("expected v after reopen, got %q (%v)", v, err)
	}
}

func TestSQLiteConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := tempSQLite(t)
	const writers, perWriter = 8, 100
	errc := make(chan error, writers*perWriter)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := s.Set(ctx, fmt.Sprintf("w%d.k%d", w, i%10), []byte("v")); err != nil {
					errc <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errc)
	failed := 0
	var first error
	for err := range errc {
		if first == nil {
			first = err
		}
		failed++
	}
	if failed > 0 {
		t.Fatalf("%d of %d writes failed, first: %v", failed, writers*perWriter, first)
	}
	keys, err := s.Keys(ctx, "w")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != writers*10 {
		t.Fatalf("expected %d keys, got %d", writers*10, len(keys))
	}
}

func TestSQLitePragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := tempSQLite(t)
	conns := make([]*sql.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		c, err := s.DB().Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		conns = append(conns, c)
		var timeout int
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("busy_timeout: %v", err)
		}
		if timeout != 5000 {
			t.Fatalf("connection %d: expected busy_timeout 5000, got %d", i, timeout)
		}
		var mode string
		if err := c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("journal_mode: %v", err)
		}
		if mode != "wal" {
			t.Fatalf("connection %d: expected wal, got %q", i, mode)
		}
	}
	for _, c := range conns {
		c.Close()
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	m.Set(ctx, "k", buf)
	buf[0] = 'z'
	v, _ := m.Get(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("expected stored copy, got %q", v)
	}
}
