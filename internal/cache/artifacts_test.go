package cache

import (
	"testing"
	"time"

	"github.com/titulkysubs/titulkysubs/internal/models"
)

type stubFiles struct {
	present map[string]bool
}

func (f *stubFiles) Exists(name string) bool { return f.present[name] }
func (f *stubFiles) URL(name string) string  { return "http://10.0.0.5:7000/subtitles/" + name }

func newArtifactStore(t *testing.T, files ArtifactFiles) (*ArtifactStore, Cache) {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return NewArtifactStore(c, files), c
}

func TestArtifactStore_HitRebuildsURL(t *testing.T) {
	files := &stubFiles{present: map[string]bool{"the-matrix_direct_1700000000000.srt": true}}
	store, _ := newArtifactStore(t, files)

	err := store.Put("tt0133093", &models.SubtitleArtifact{
		ID:       "direct_1700000000000",
		URL:      "http://old-host:7000/subtitles/the-matrix_direct_1700000000000.srt",
		Lang:     "cze",
		Filename: "the-matrix_direct_1700000000000.srt",
		Strategy: "direct",
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	artifact, ok := store.Get("tt0133093")
	if !ok {
		t.Fatal("Expected hit")
	}
	if artifact.URL != "http://10.0.0.5:7000/subtitles/the-matrix_direct_1700000000000.srt" {
		t.Errorf("Expected URL from current base, got %s", artifact.URL)
	}
	if artifact.ID != "direct_1700000000000" || artifact.Lang != "cze" {
		t.Errorf("Unexpected artifact %+v", artifact)
	}
}

func TestArtifactStore_MissingFileDropsEntry(t *testing.T) {
	files := &stubFiles{present: map[string]bool{}}
	store, c := newArtifactStore(t, files)

	if err := store.Put("tt0133093", &models.SubtitleArtifact{ID: "direct_1", Filename: "gone.srt"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	before := counterValue(StaleTotal, ArtifactGroup)

	if _, ok := store.Get("tt0133093"); ok {
		t.Fatal("Expected miss for artifact whose file is gone")
	}
	if c.Contains("tt0133093") {
		t.Error("Expected stale entry to be deleted")
	}
	if got := counterValue(StaleTotal, ArtifactGroup) - before; got != 1 {
		t.Errorf("Expected 1 stale drop, got %.0f", got)
	}
}

func TestArtifactStore_PutRejectsArtifactWithoutFile(t *testing.T) {
	store, c := newArtifactStore(t, &stubFiles{})

	if err := store.Put("tt0133093", &models.SubtitleArtifact{ID: "direct_1"}); err == nil {
		t.Error("Expected error for artifact without filename")
	}
	if err := store.Put("tt0133093", nil); err == nil {
		t.Error("Expected error for nil artifact")
	}
	if c.Len() != 0 {
		t.Errorf("Expected nothing cached, got %d entries", c.Len())
	}
}

func TestArtifactStore_UndecodableEntryIsMiss(t *testing.T) {
	store, c := newArtifactStore(t, &stubFiles{present: map[string]bool{"m.srt": true}})
	c.Set("tt0133093", []byte("not json"))

	if _, ok := store.Get("tt0133093"); ok {
		t.Error("Expected miss for undecodable entry")
	}
}
