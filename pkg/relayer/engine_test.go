package relayer

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
)

type engineRun struct {
	engine *Engine
	cancel context.CancelFunc
	done   chan error
}

func startEngine(t *testing.T, source LockSource, target MintTarget, store db.Store, emitter notify.Emitter) *engineRun {
	t.Helper()
	engine := NewEngine(testConfig(), source, target, store, emitter, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	r := &engineRun{engine: engine, cancel: cancel, done: make(chan error, 1)}
	go func() { r.done <- engine.Run(ctx) }()
	t.Cleanup(func() { r.stop(t) })
	return r
}

func (r *engineRun) stop(t *testing.T) {
	t.Helper()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	select {
	case err := <-r.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func countStatus(t *testing.T, store db.Store, status db.TaskStatus) int {
	t.Helper()
	counts, err := store.CountByStatus(context.Background())
	require.NoError(t, err)
	return counts[status]
}

func TestEngine_RelaysEveryLockExactlyOnce(t *testing.T) {
	const n = 10
	lock := &fakeLockChain{}
	for i := int64(0); i < n; i++ {
		lock.lock(i, recipient, 100+i, uint64(i+1))
	}
	lock.setHead(n + 10)

	mint := newFakeMintChain()
	store := db.NewMemoryStore()
	emitter := &recordingEmitter{}
	run := startEngine(t, lock.source(), mint.target(), store, emitter)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == n
	}, 5*time.Second, 10*time.Millisecond)
	run.stop(t)

	for i := int64(0); i < n; i++ {
		assert.Equal(t, 1, mint.mintCount(i), "id %d", i)
		assert.ElementsMatch(t,
			[]notify.Type{notify.TypeObserved, notify.TypeSubmitted, notify.TypeConfirmed},
			emitter.types(big.NewInt(i).String()))
	}
	assert.Equal(t, n, mint.sendCount())
	assert.True(t, run.engine.IsReady())
}

func TestEngine_LockThenMintScenario(t *testing.T) {
	lock := &fakeLockChain{}
	lock.lock(0, common.HexToAddress("0xBBB"), 100, 1)
	lock.setHead(10)

	mint := newFakeMintChain()
	store := db.NewMemoryStore()
	startEngine(t, lock.source(), mint.target(), store, nil)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, big.NewInt(100), mint.balance(common.HexToAddress("0xBBB")))
	processed, err := mint.target().IsProcessed(context.Background(), big.NewInt(0))
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestEngine_DuplicateObservationMintsOnce(t *testing.T) {
	lock := &fakeLockChain{}
	lock.lock(5, recipient, 1, 2)
	lock.lock(5, recipient, 1, 4)
	lock.setHead(20)

	mint := newFakeMintChain()
	store := db.NewMemoryStore()
	startEngine(t, lock.source(), mint.target(), store, nil)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, mint.mintCount(5))
	assert.Equal(t, 1, mint.sendCount())
}

func TestEngine_ConfirmedIDIsNotMintedAgain(t *testing.T) {
	ctx := context.Background()
	lock := &fakeLockChain{}
	lock.lock(0, recipient, 1, 1)
	lock.setHead(10)

	mint := newFakeMintChain()
	store := db.NewMemoryStore()
	run := startEngine(t, lock.source(), mint.target(), store, nil)
	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)
	run.stop(t)

	// simulate the same event being delivered again after a cursor rewind
	q := NewDeliveryQueue(store)
	n, err := q.Enqueue(ctx, "1337", []*ethereum.LockEvent{lockEvent(0, recipient, 1, 1)}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	startEngine(t, lock.source(), mint.target(), store, nil)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, mint.sendCount())
}

func TestEngine_RestartAfterSubmitted(t *testing.T) {
	tests := []struct {
		name          string
		landed        bool
		expectedSends int
	}{
		{name: "prior transaction landed", landed: true, expectedSends: 0},
		{name: "prior transaction lost", landed: false, expectedSends: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := db.NewMemoryStore()
			q := NewDeliveryQueue(store)
			_, err := q.Enqueue(ctx, "1337", []*ethereum.LockEvent{lockEvent(0, recipient, 100, 1)}, 5)
			require.NoError(t, err)
			task, err := q.DequeueNext(ctx)
			require.NoError(t, err)
			hash := common.HexToHash("0xdead")
			task.Status = db.TaskStatusSubmitted
			task.SubmittedTxHash = &hash
			require.NoError(t, store.UpdateTask(ctx, task))

			lock := &fakeLockChain{}
			lock.lock(0, recipient, 100, 1)
			lock.setHead(10)
			mint := newFakeMintChain()
			if tt.landed {
				mint.processed["0"] = true
				mint.mints["0"] = 1
			}

			startEngine(t, lock.source(), mint.target(), store, nil)
			require.Eventually(t, func() bool {
				return countStatus(t, store, db.TaskStatusConfirmed) == 1
			}, 5*time.Second, 10*time.Millisecond)

			assert.Equal(t, tt.expectedSends, mint.sendCount())
			assert.Equal(t, 1, mint.mintCount(0))
		})
	}
}

func TestEngine_ReplayRaceIsConfirmed(t *testing.T) {
	lock := &fakeLockChain{}
	lock.lock(5, recipient, 1, 1)
	lock.setHead(10)

	mint := newFakeMintChain()
	mint.processed["5"] = true
	mint.mints["5"] = 1
	target := mint.target()
	// a stale processed() read lets the submission race past the local check
	target.IsProcessedFunc = func(context.Context, *big.Int) (bool, error) { return false, nil }

	store := db.NewMemoryStore()
	emitter := &recordingEmitter{}
	startEngine(t, lock.source(), target, store, emitter)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, mint.mintCount(5))
	assert.NotContains(t, emitter.types("5"), notify.TypeFailed)
}

func TestEngine_RequeueFailedTask(t *testing.T) {
	lock := &fakeLockChain{}
	lock.lock(1, recipient, 1, 1)
	lock.setHead(10)

	mint := newFakeMintChain()
	rejected := true
	mint.submitErr = func(*big.Int) error {
		mint.mu.Lock()
		defer mint.mu.Unlock()
		if rejected {
			return &ethereum.ChainError{Kind: ethereum.KindReverted, Op: "estimate_gas", Reason: "Receiver: paused"}
		}
		return nil
	}

	store := db.NewMemoryStore()
	run := startEngine(t, lock.source(), mint.target(), store, nil)
	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusFailed) == 1
	}, 5*time.Second, 10*time.Millisecond)

	mint.mu.Lock()
	rejected = false
	mint.mu.Unlock()

	task, err := run.engine.Requeue(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, db.TaskStatusPending, task.Status)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, mint.mintCount(1))

	_, err = run.engine.Requeue(context.Background(), big.NewInt(1))
	assert.ErrorIs(t, err, db.ErrTaskNotFailed)
}

func TestEngine_VerifyRelayerMismatch(t *testing.T) {
	target := &MockMintTarget{
		Signer: common.HexToAddress("0x1"),
		RelayerFunc: func(context.Context) (common.Address, error) {
			return common.HexToAddress("0x2"), nil
		},
	}
	engine := NewEngine(testConfig(), &MockLockSource{}, target, db.NewMemoryStore(), nil, zap.NewNop())

	err := engine.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRelayerMismatch))
}

func TestEngine_Status(t *testing.T) {
	lock := &fakeLockChain{}
	lock.lock(0, recipient, 1, 1)
	lock.setHead(10)
	mint := newFakeMintChain()
	store := db.NewMemoryStore()
	run := startEngine(t, lock.source(), mint.target(), store, nil)

	require.Eventually(t, func() bool {
		return countStatus(t, store, db.TaskStatusConfirmed) == 1
	}, 5*time.Second, 10*time.Millisecond)

	st, err := run.engine.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1337", st.LockChainID)
	assert.Equal(t, "1338", st.MintChainID)
	assert.Equal(t, common.HexToAddress("0xbeef").Hex(), st.Signer)
	assert.Equal(t, uint64(6), st.NextBlock)
	assert.Equal(t, uint64(10), st.LockHead)
	assert.Equal(t, 1, st.Tasks[db.TaskStatusConfirmed])
	assert.True(t, st.Ready)
}

func TestMintObserver_MarksMintedIDs(t *testing.T) {
	ctx := context.Background()
	target := &MockMintTarget{
		LatestBlockFunc: func(context.Context) (uint64, error) { return 50, nil },
		MintedInRangeFunc: func(_ context.Context, from, to uint64) ([]*ethereum.MintedEvent, error) {
			if from <= 30 && to >= 30 {
				return []*ethereum.MintedEvent{{ID: big.NewInt(3), To: recipient, Amount: big.NewInt(1), BlockNumber: 30}}, nil
			}
			return nil, nil
		},
	}
	store := db.NewMemoryStore()
	require.NoError(t, store.SetCursor(ctx, "mint:1338", 9))
	guard := NewReplayGuard(target, store)

	cfg := testConfig().MintChain
	o := NewMintObserver(&cfg, target, store, guard, zap.NewNop())
	require.NoError(t, o.Load(ctx))
	require.NoError(t, o.Poll(ctx))

	assert.Equal(t, 1, guard.Size())
	last, ok, err := store.GetCursor(ctx, "mint:1338")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(50), last)
}
