package feed

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ulikunitz/xz"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("create xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close xz writer: %v", err)
	}
	return buf.Bytes()
}

func TestFetchAndDecompress(t *testing.T) {
	list := []byte(`[{"Filmliste":["meta"]},{"Filmliste":["columns"]}]`)
	compressed := compress(t, list)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Filmliste-akt.xz" {
			http.NotFound(w, r)
			return
		}
		w.Write(compressed)
	}))
	defer srv.Close()

	blob, err := Fetch(context.Background(), srv.URL+"/Filmliste-akt.xz")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	raw, err := Decompress(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("Decompress returned error: %v", err)
	}
	if !bytes.Equal(raw, list) {
		t.Fatalf("round trip mismatch: %q", raw)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/missing.xz"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
