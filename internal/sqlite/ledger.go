package sqlite

import (
	"context"
	"errors"

	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/repository"
)

// LedgerRepository implements ledger.Repository on the documents table
type LedgerRepository struct {
	docs *DocumentStore
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{docs: NewDocumentStore(db)}
}

// Load returns the stored stats
func (r *LedgerRepository) Load(ctx context.Context) (*ledger.Stats, error) {
	var stats ledger.Stats
	if err := r.docs.getJSON(ctx, KeyStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save replaces the stored stats
func (r *LedgerRepository) Save(ctx context.Context, stats *ledger.Stats) error {
	return r.docs.putJSON(ctx, KeyStats, stats)
}

// Delete removes the stored stats
func (r *LedgerRepository) Delete(ctx context.Context) error {
	err := r.docs.Delete(ctx, KeyStats)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
