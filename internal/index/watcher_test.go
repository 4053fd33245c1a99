package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/cardex/internal/storage"
)

// watcherTestEnv sets up a vault dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store, testDB(t)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestSync_IndexesAndPrunes(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(vaultDir, "jane.vcf"), []byte(janeCard), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "eve.vcf"), []byte(invalidCard), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "notes.txt"), []byte("skip"), 0o644)
	mustIndex(t, db, "stale.vcf", bobCard)

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	paths, _ := db.AllPaths()
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	if _, ok := paths["stale.vcf"]; ok {
		t.Error("stale entry not pruned")
	}
	eve, err := db.GetCard("eve.vcf")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if eve.Valid || eve.ErrorCode != "INV_PROP" {
		t.Errorf("eve = %+v", eve)
	}
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, vaultDir, quietLogger(), func(kind EventKind, path string) {
		mu.Lock()
		events = append(events, string(kind)+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.vcf"), []byte(janeCard), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.vcf")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.vcf" {
				return true
			}
		}
		return false
	}, "expected created:new.vcf callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, vaultDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "readme.md"), []byte("# hi"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "marker.vcf"), []byte(bobCard), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("marker.vcf")
		return cs != ""
	}, "marker card not indexed")

	paths, _ := db.AllPaths()
	if _, ok := paths["readme.md"]; ok {
		t.Error("non-card file indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, vaultDir, quietLogger(), nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "team")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.vcf"), []byte(bobCard), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("team/deep.vcf")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.WriteFile(filepath.Join(vaultDir, "del.vcf"), []byte(janeCard), 0o644)
	_ = Sync(db, store, logger)

	cs, _ := db.GetChecksum("del.vcf")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, vaultDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(vaultDir, "del.vcf"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.vcf")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.WriteFile(filepath.Join(vaultDir, "old.vcf"), []byte(janeCard), 0o644)
	_ = Sync(db, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, vaultDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(vaultDir, "old.vcf"), filepath.Join(vaultDir, "renamed.vcf"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.vcf")
		newCS, _ := db.GetChecksum("renamed.vcf")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
