package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/lockmint-relayer/pkg/app/errors"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperrors.ResourceNotFoundError(nil, "task not found"), http.StatusNotFound, "task not found"},
		{"conflict", apperrors.ConflictError(errors.New("x"), "task is not failed"), http.StatusConflict, "task is not failed"},
		{"not ready", apperrors.NotReadyError("not ready"), http.StatusServiceUnavailable, "not ready"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Unexpected Service Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HandleError(func(http.ResponseWriter, *http.Request) error { return tt.err })
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.ErrMsg)
			assert.Equal(t, tt.status, body.ErrMsgCode)
		})
	}
}
