package vector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *BoltIndex {
	t.Helper()
	idx, err := OpenBolt(filepath.Join(t.TempDir(), "vec.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestAddAndSearch(t *testing.T) {
	idx := openTestIndex(t)

	docs := []struct {
		doc Document
		vec []float32
	}{
		{Document{ID: "a", Filename: "a.jpg", Content: "trà sữa"}, []float32{1, 0, 0}},
		{Document{ID: "b", Filename: "b.jpg", Content: "cà phê"}, []float32{0, 1, 0}},
		{Document{ID: "c", Filename: "c.jpg", Content: "trà đá"}, []float32{0.9, 0.1, 0}},
	}
	for _, d := range docs {
		if err := idx.Add(d.doc, d.vec); err != nil {
			t.Fatalf("Add(%s): %v", d.doc.ID, err)
		}
	}

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].ID != "a" || hits[1].ID != "c" {
		t.Errorf("hit order = %s, %s, want a, c", hits[0].ID, hits[1].ID)
	}
	if hits[0].Distance != 0 {
		t.Errorf("exact match distance = %v, want 0", hits[0].Distance)
	}
	if hits[0].Content != "trà sữa" {
		t.Errorf("hit content = %q", hits[0].Content)
	}
}

func TestAddOverwrites(t *testing.T) {
	idx := openTestIndex(t)

	idx.Add(Document{ID: "a", Content: "old"}, []float32{1, 0})
	idx.Add(Document{ID: "a", Content: "new"}, []float32{0, 1})

	n, err := idx.Count()
	if err != nil || n != 1 {
		t.Fatalf("Count = %d (%v), want 1", n, err)
	}
	hits, _ := idx.Search([]float32{0, 1}, 1)
	if len(hits) != 1 || hits[0].Content != "new" {
		t.Errorf("hits = %v, want the overwritten document", hits)
	}
}

func TestRemove(t *testing.T) {
	idx := openTestIndex(t)

	idx.Add(Document{ID: "a", Content: "x"}, []float32{1})
	if err := idx.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := idx.Remove("a"); err != nil {
		t.Errorf("Remove of absent id: %v, want nil", err)
	}
	n, _ := idx.Count()
	if n != 0 {
		t.Errorf("Count = %d after remove, want 0", n)
	}
}

func TestSearchSkipsMismatchedDimensions(t *testing.T) {
	idx := openTestIndex(t)

	idx.Add(Document{ID: "a", Content: "2d"}, []float32{1, 0})
	idx.Add(Document{ID: "b", Content: "3d"}, []float32{1, 0, 0})

	hits, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Errorf("hits = %v, want only the 2d document", hits)
	}
}

func TestHTTPEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("path = %q, want /embed", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		resp := embedResponse{Embeddings: make([][]float32, len(req.Texts))}
		for i := range req.Texts {
			resp.Embeddings[i] = []float32{float32(i), 1}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	embedder := NewHTTPEmbedder(srv.URL)
	vecs, err := embedder.Embed(context.Background(), []string{"một", "hai"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[1][0] != 1 {
		t.Errorf("vecs = %v", vecs)
	}
}

func TestHTTPEmbedderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPEmbedder(srv.URL).Embed(context.Background(), []string{"x"})
	if !errors.Is(err, ErrEmbedderUnavailable) {
		t.Errorf("err = %v, want ErrEmbedderUnavailable", err)
	}
}
