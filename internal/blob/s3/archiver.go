package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// Archiver uploads normalized book snapshots as JSON objects, keyed by token
// and capture time, so historical depth can be replayed later.
type Archiver struct {
	writer domain.BlobWriter
	prefix string
}

// NewArchiver creates an Archiver writing under the given key prefix
// (e.g. "books"). An empty prefix defaults to "books".
func NewArchiver(writer domain.BlobWriter, prefix string) *Archiver {
	if prefix == "" {
		prefix = "books"
	}
	return &Archiver{writer: writer, prefix: prefix}
}

// archivedLevel mirrors domain.PriceLevel with JSON tags for storage.
type archivedLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// archivedSnapshot is the stored form of one book snapshot.
type archivedSnapshot struct {
	TokenID   string          `json:"token_id"`
	Bids      []archivedLevel `json:"bids"`
	Asks      []archivedLevel `json:"asks"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// ArchiveSnapshot serializes the snapshot and uploads it to
// {prefix}/{tokenID}/{RFC3339 capture time}.json.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, snap domain.OrderbookSnapshot) error {
	stored := archivedSnapshot{
		TokenID:   snap.TokenID,
		Bids:      toArchivedLevels(snap.Bids),
		Asks:      toArchivedLevels(snap.Asks),
		FetchedAt: snap.FetchedAt,
	}

	buf, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot %s: %w", snap.TokenID, err)
	}

	path := a.snapshotPath(snap.TokenID, snap.FetchedAt)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive snapshot %s: %w", snap.TokenID, err)
	}
	return nil
}

// snapshotPath partitions keys by token, then by capture time.
func (a *Archiver) snapshotPath(tokenID string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", a.prefix, tokenID, at.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func toArchivedLevels(levels []domain.PriceLevel) []archivedLevel {
	out := make([]archivedLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, archivedLevel{Price: lvl.Price, Size: lvl.Size})
	}
	return out
}
