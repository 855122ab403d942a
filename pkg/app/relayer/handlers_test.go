package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/pkg/auth"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/relayer"
)

const testSecret = "operator-test-secret"

// MockEngine is a mock implementation of Engine
type MockEngine struct {
	IsReadyFunc func() bool
	StatusFunc  func(ctx context.Context) (*relayer.Status, error)
	RequeueFunc func(ctx context.Context, id *big.Int) (*db.RelayTask, error)
}

func (m *MockEngine) IsReady() bool {
	if m.IsReadyFunc != nil {
		return m.IsReadyFunc()
	}
	return true
}

func (m *MockEngine) Status(ctx context.Context) (*relayer.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &relayer.Status{}, nil
}

func (m *MockEngine) Requeue(ctx context.Context, id *big.Int) (*db.RelayTask, error) {
	if m.RequeueFunc != nil {
		return m.RequeueFunc(ctx, id)
	}
	return nil, db.ErrTaskNotFound
}

func testRouter(t *testing.T, engine Engine, store db.AdminStore) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server:     config.ServerConfig{MiddlewareTimeout: 5 * time.Second},
		Monitoring: config.MonitoringConfig{Enabled: true},
	}
	return NewRouter(cfg, engine, store, nil, auth.NewJWTValidator(testSecret, ""), zap.NewNop())
}

func seedStore(t *testing.T) *db.MemoryStore {
	t.Helper()
	store := db.NewMemoryStore()
	tasks := []*db.RelayTask{
		{
			LockID:        big.NewInt(1),
			SourceChainID: "1337",
			From:          common.HexToAddress("0x01"),
			To:            common.HexToAddress("0x02"),
			Amount:        big.NewInt(1_500_000_000_000_000_000),
			SourceBlock:   10,
			Status:        db.TaskStatusPending,
		},
		{
			LockID:        big.NewInt(2),
			SourceChainID: "1337",
			From:          common.HexToAddress("0x01"),
			To:            common.HexToAddress("0x03"),
			Amount:        big.NewInt(7),
			SourceBlock:   11,
			Status:        db.TaskStatusPending,
		},
		{
			LockID:        big.NewInt(3),
			SourceChainID: "1337",
			From:          common.HexToAddress("0x01"),
			To:            common.HexToAddress("0x04"),
			Amount:        big.NewInt(9),
			SourceBlock:   12,
			Status:        db.TaskStatusPending,
		},
	}
	_, err := store.EnqueueBatch(context.Background(), "lock:1337", tasks, 12)
	require.NoError(t, err)

	failed := tasks[1].Clone()
	failed.Status = db.TaskStatusFailed
	failed.LastError = "rejected"
	require.NoError(t, store.ArchiveTask(context.Background(), failed))

	confirmed := tasks[2].Clone()
	confirmed.Status = db.TaskStatusConfirmed
	require.NoError(t, store.ArchiveTask(context.Background(), confirmed))
	return store
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	ready := false
	h := testRouter(t, &MockEngine{IsReadyFunc: func() bool { return ready }}, db.NewMemoryStore())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/ready", "").Code)

	ready = true
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t, &MockEngine{}, db.NewMemoryStore())
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus(t *testing.T) {
	engine := &MockEngine{
		StatusFunc: func(context.Context) (*relayer.Status, error) {
			return &relayer.Status{LockChainID: "1337", MintChainID: "1338", NextBlock: 42, Ready: true}, nil
		},
	}
	h := testRouter(t, engine, db.NewMemoryStore())

	rec := do(t, h, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1337", body["lock_chain_id"])
	assert.EqualValues(t, 42, body["next_block"])

	engine.StatusFunc = func(context.Context) (*relayer.Status, error) {
		return nil, errors.New("db down")
	}
	assert.Equal(t, http.StatusBadGateway, do(t, h, http.MethodGet, "/api/v1/status", "").Code)
}

func TestListTasks(t *testing.T) {
	h := testRouter(t, &MockEngine{}, seedStore(t))

	t.Run("all", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/tasks", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Tasks []taskResponse `json:"tasks"`
			Count int            `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body.Count)
	})

	t.Run("by status", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/tasks?status=failed", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Tasks []taskResponse `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Tasks, 1)
		assert.Equal(t, "2", body.Tasks[0].LockID)
		assert.Equal(t, "rejected", body.Tasks[0].LastError)
	})

	t.Run("bad status", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/tasks?status=lost", "").Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/tasks?limit=-1", "").Code)
	})
}

func TestGetTask(t *testing.T) {
	h := testRouter(t, &MockEngine{}, seedStore(t))

	rec := do(t, h, http.MethodGet, "/api/v1/tasks/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var task taskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, "1500000000000000000", task.Amount)
	assert.Equal(t, "1.5", task.AmountFormatted)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/tasks/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/tasks/abc", "").Code)
}

func TestRetryTask(t *testing.T) {
	store := seedStore(t)
	var requeued *big.Int
	engine := &MockEngine{
		RequeueFunc: func(ctx context.Context, id *big.Int) (*db.RelayTask, error) {
			requeued = id
			return store.RequeueFailed(ctx, id)
		},
	}
	h := testRouter(t, engine, store)

	v := auth.NewJWTValidator(testSecret, "")
	token, err := v.IssueToken("alice", time.Minute)
	require.NoError(t, err)

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/tasks/2/retry", "").Code)
		assert.Nil(t, requeued)
	})

	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/tasks/2/retry", "garbage").Code)
	})

	t.Run("confirmed", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/api/v1/tasks/3/retry", token).Code)
	})

	t.Run("still queued", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/v1/tasks/1/retry", token).Code)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/v1/tasks/99/retry", token).Code)
	})

	t.Run("requeued", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/tasks/2/retry", token)
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, int64(2), requeued.Int64())

		var task taskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
		assert.Equal(t, "pending", task.Status)
		assert.Zero(t, task.Attempts)
	})
}
