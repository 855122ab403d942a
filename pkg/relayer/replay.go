package relayer

import (
	"context"
	"math/big"
	"sync"
)

type processedChecker interface {
	IsProcessed(ctx context.Context, id *big.Int) (bool, error)
}

type confirmedChecker interface {
	IsConfirmed(ctx context.Context, id *big.Int) (bool, error)
}

// ReplayGuard answers whether a lock id was already minted. It checks an
// in-memory set, then the archive of confirmed tasks, then the mint ledger's
// processed flag. Only positive answers are cached since an id never becomes
// unprocessed.
type ReplayGuard struct {
	chain processedChecker
	store confirmedChecker

	mu        sync.RWMutex
	processed map[string]struct{}
}

// NewReplayGuard creates a guard over the mint ledger and the task archive
func NewReplayGuard(chain processedChecker, store confirmedChecker) *ReplayGuard {
	return &ReplayGuard{
		chain:     chain,
		store:     store,
		processed: make(map[string]struct{}),
	}
}

// IsProcessed reports whether id was already minted
func (g *ReplayGuard) IsProcessed(ctx context.Context, id *big.Int) (bool, error) {
	if g.cached(id) {
		return true, nil
	}

	confirmed, err := g.store.IsConfirmed(ctx, id)
	if err != nil {
		return false, persistenceError("is confirmed", err)
	}
	if confirmed {
		g.MarkProcessed(id)
		return true, nil
	}

	processed, err := g.chain.IsProcessed(ctx, id)
	if err != nil {
		return false, classifyChainError(err)
	}
	if processed {
		g.MarkProcessed(id)
	}
	return processed, nil
}

// MarkProcessed records id as minted
func (g *ReplayGuard) MarkProcessed(id *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.processed[id.String()] = struct{}{}
}

// Size returns the number of cached ids
func (g *ReplayGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.processed)
}

func (g *ReplayGuard) cached(id *big.Int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.processed[id.String()]
	return ok
}
