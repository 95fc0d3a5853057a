package routing

import (
	"path/filepath"
	"testing"

	"github.com/okdaichi/meshroute/internal/wire"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStateStore(filepath.Join(dir, "state.json"))

	l := NewLSDB("A")
	l.Accept("B", 3, []wire.LinkEdge{{To: "C", W: 2}})

	if err := store.Save(SnapshotLSDB(l)); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	l2 := NewLSDB("A")
	RestoreLSDB(l2, loaded)

	seq, ok := l2.SeqOf("B")
	if !ok || seq != 3 {
		t.Fatalf("restored seq = %v, %v, want 3, true", seq, ok)
	}
}

func TestFileStateStoreLoadMissingFileReturnsNil(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "missing.json"))

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil snapshot for missing file, got %v", loaded)
	}
}
