package book

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeSource struct {
	bids [][]string
	asks [][]string
	err  error
}

func (f *fakeSource) FetchBook(ctx context.Context, tokenID string) ([][]string, [][]string, error) {
	return f.bids, f.asks, f.err
}

func TestSnapshot_OK(t *testing.T) {
	src := &fakeSource{
		bids: [][]string{{"0.40", "10"}, {"0.45", "5"}},
		asks: [][]string{{"0.55", "8"}},
	}
	svc := NewService(src, slog.New(slog.NewTextHandler(io.Discard, nil)))

	snap, ok := svc.Snapshot(context.Background(), "tok1")
	if !ok {
		t.Fatal("ok = false for a successful fetch")
	}
	if snap.Bids[0].Price != 0.45 || snap.Asks[0].Price != 0.55 {
		t.Errorf("snapshot not normalized: %+v", snap)
	}
}

func TestSnapshot_EmptyBookIsStillOK(t *testing.T) {
	svc := NewService(&fakeSource{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	snap, ok := svc.Snapshot(context.Background(), "tok1")
	if !ok {
		t.Fatal("an empty book must not be reported as a failure")
	}
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSnapshot_FetchFailure(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("boom")}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, ok := svc.Snapshot(context.Background(), "tok1"); ok {
		t.Error("ok = true for a failed fetch")
	}
}
