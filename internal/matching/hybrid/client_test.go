// internal/matching/hybrid/client_test.go
package hybrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "agrimatch/internal/common/errors"
	"agrimatch/internal/common/httpclient"

	"github.com/stretchr/testify/assert"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, httpclient.NewClient(2*time.Second)), server
}

func TestClient_Predict_Success(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req PredictRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 100.0, req.VarietyScore)

		json.NewEncoder(w).Encode(PredictResponse{Score: 91.2, Grade: "A", Confidence: 0.88})
	})
	defer server.Close()

	resp, err := client.Predict(context.Background(), PredictRequest{VarietyScore: 100})

	assert.NoError(t, err)
	assert.Equal(t, 91.2, resp.Score)
	assert.Equal(t, "A", resp.Grade)
	assert.Equal(t, 0.88, resp.Confidence)
}

func TestClient_Predict_NonOKStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	resp, err := client.Predict(context.Background(), PredictRequest{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPredictFailed)
}

func TestClient_Predict_TransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", httpclient.NewClient(200*time.Millisecond))

	resp, err := client.Predict(context.Background(), PredictRequest{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPredictFailed)
}

func TestClient_Predict_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing required grade", `{"score": 90}`},
		{"score out of range", `{"score": 300, "grade": "A"}`},
		{"invalid grade", `{"score": 90, "grade": "E"}`},
		{"wrong type", `{"score": "ninety", "grade": "A"}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			defer server.Close()

			resp, err := client.Predict(context.Background(), PredictRequest{})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestClient_Predict_EmbeddedError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PredictResponse{Score: 0, Grade: "D", Error: "model not loaded"})
	})
	defer server.Close()

	resp, err := client.Predict(context.Background(), PredictRequest{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPredictFailed)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestClient_Predict_ContextCancelled(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resp, err := client.Predict(ctx, PredictRequest{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPredictFailed)
}

func TestClient_Predict_ErrorCarriesMLCode(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := client.Predict(context.Background(), PredictRequest{})

	assert.ErrorIs(t, err, ErrPredictFailed)
	assert.Equal(t, apperrors.ErrCodeMLUnavailable, apperrors.CodeOf(err))
}
