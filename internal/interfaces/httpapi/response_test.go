package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/rahmatagung/scorecenter/internal/usecase"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content-type = %q", got)
	}

	var envelope struct {
		APIVersion string            `json:"apiVersion"`
		Data       map[string]string `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("apiVersion = %q", envelope.APIVersion)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("data = %v", envelope.Data)
	}
}

func TestWriteJSONUnencodablePayloadIs500(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeJSON(context.Background(), rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body = %q, want empty", rec.Body.String())
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: bad date", usecase.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
		{
			name:       "not found",
			err:        usecase.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantReason: "notFound",
		},
		{
			name:       "dependency unavailable",
			err:        usecase.ErrDependencyUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
		},
		{
			name:       "provider failure",
			err:        fmt.Errorf("fetch lineups: %w", usecase.ErrProvider),
			wantStatus: http.StatusBadGateway,
			wantReason: "providerFailure",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantReason: "internalError",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := mapError(tt.err)
			if mapped.HTTPStatus != tt.wantStatus {
				t.Fatalf("status = %d, want %d", mapped.HTTPStatus, tt.wantStatus)
			}
			if mapped.Reason != tt.wantReason {
				t.Fatalf("reason = %q, want %q", mapped.Reason, tt.wantReason)
			}
		})
	}
}
