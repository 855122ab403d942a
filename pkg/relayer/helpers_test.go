package relayer

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
)

var errStoreDown = errors.New("connection refused")

func testConfig() *config.Config {
	return &config.Config{
		LockChain: config.ChainConfig{
			Name:              "lock",
			ReorgSafetyMargin: 5,
			MaxBlockRange:     100,
			PollingInterval:   10 * time.Millisecond,
		},
		MintChain: config.ChainConfig{
			Name:              "mint",
			ReorgSafetyMargin: 0,
			MaxBlockRange:     100,
			PollingInterval:   10 * time.Millisecond,
		},
		Relay: config.RelayConfig{
			Workers:           4,
			MaxAttempts:       3,
			BackoffInitial:    2 * time.Second,
			BackoffMax:        time.Minute,
			BackoffMultiplier: 1,
			DequeueInterval:   10 * time.Millisecond,
			DrainTimeout:      time.Second,
			ReconcileInterval: time.Hour,
			VerifyRelayer:     true,
			ObserveMints:      false,
		},
	}
}

func lockEvent(id int64, to common.Address, amount int64, block uint64) *ethereum.LockEvent {
	return &ethereum.LockEvent{
		ID:          big.NewInt(id),
		From:        common.HexToAddress("0xAAA"),
		To:          to,
		Amount:      big.NewInt(amount),
		BlockNumber: block,
	}
}

// failingStore is a MemoryStore whose writes can be made to fail
type failingStore struct {
	*db.MemoryStore
	failEnqueue bool
	failUpdate  bool
	failArchive bool
}

func (s *failingStore) EnqueueBatch(ctx context.Context, key string, tasks []*db.RelayTask, block uint64) (int, error) {
	if s.failEnqueue {
		return 0, errStoreDown
	}
	return s.MemoryStore.EnqueueBatch(ctx, key, tasks, block)
}

func (s *failingStore) UpdateTask(ctx context.Context, task *db.RelayTask) error {
	if s.failUpdate {
		return errStoreDown
	}
	return s.MemoryStore.UpdateTask(ctx, task)
}

func (s *failingStore) ArchiveTask(ctx context.Context, task *db.RelayTask) error {
	if s.failArchive {
		return errStoreDown
	}
	return s.MemoryStore.ArchiveTask(ctx, task)
}
