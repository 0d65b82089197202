package s3blob

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

type memWriter struct {
	paths    []string
	payloads [][]byte
	types    []string
}

func (m *memWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.paths = append(m.paths, path)
	m.payloads = append(m.payloads, buf)
	m.types = append(m.types, contentType)
	return nil
}

func TestArchiveSnapshot(t *testing.T) {
	w := &memWriter{}
	a := NewArchiver(w, "")

	snap := domain.OrderbookSnapshot{
		TokenID:   "tok1",
		Bids:      []domain.PriceLevel{{Price: 0.54, Size: 150}},
		Asks:      []domain.PriceLevel{{Price: 0.56, Size: 80}},
		FetchedAt: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
	}

	if err := a.ArchiveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ArchiveSnapshot: %v", err)
	}

	if len(w.paths) != 1 {
		t.Fatalf("got %d uploads", len(w.paths))
	}
	if want := "books/tok1/2026-08-29T10:30:00.000Z.json"; w.paths[0] != want {
		t.Errorf("path = %s, want %s", w.paths[0], want)
	}
	if w.types[0] != "application/json" {
		t.Errorf("content type = %s", w.types[0])
	}

	var stored archivedSnapshot
	if err := json.Unmarshal(w.payloads[0], &stored); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if stored.TokenID != "tok1" || len(stored.Bids) != 1 || stored.Bids[0].Price != 0.54 {
		t.Errorf("stored = %+v", stored)
	}
}
