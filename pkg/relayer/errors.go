package relayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
)

// Failure classes for relay work. Every error leaving a relayer component
// wraps exactly one of them.
var (
	// ErrTransient is an RPC failure that is retried with backoff.
	ErrTransient = errors.New("transient network error")
	// ErrChainRejection is a revert for a reason other than replay. The task
	// is failed and needs operator review.
	ErrChainRejection = errors.New("chain rejection")
	// ErrReplayRejection means the mint ledger already processed the id.
	// It is treated as success.
	ErrReplayRejection = errors.New("replay rejection")
	// ErrPersistence is a failed durable write or read. It stops the engine.
	ErrPersistence = errors.New("persistence failure")
	// ErrRelayerMismatch is returned when the signer is not the mint ledger's
	// authorized relayer.
	ErrRelayerMismatch = errors.New("signer is not the authorized relayer")
)

// classifyChainError maps a chain client error onto the relay failure classes.
func classifyChainError(err error) error {
	if err == nil {
		return nil
	}
	switch ethereum.KindOf(err) {
	case ethereum.KindReplay:
		return fmt.Errorf("%w: %w", ErrReplayRejection, err)
	case ethereum.KindReverted:
		return fmt.Errorf("%w: %w", ErrChainRejection, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// failureLabel is the metrics label for a classified error
func failureLabel(err error) string {
	switch {
	case errors.Is(err, ErrReplayRejection):
		return "replay"
	case errors.Is(err, ErrChainRejection):
		return "rejected"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return ethereum.KindOf(err).String()
	}
}
