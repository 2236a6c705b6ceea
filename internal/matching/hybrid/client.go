// internal/matching/hybrid/client.go
package hybrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "agrimatch/internal/common/errors"
	"agrimatch/internal/common/httpclient"

	"github.com/xeipuuv/gojsonschema"
)

// ErrPredictFailed carries the ML-unavailable code so callers can classify a
// degraded scoring path; ErrMalformedPayload marks an untrustworthy response.
var (
	ErrPredictFailed    = apperrors.NewMLUnavailableError()
	ErrMalformedPayload = errors.New("MALFORMED_PREDICT_RESPONSE")
)

// PredictRequest carries the six raw dimension scores to the external model.
type PredictRequest struct {
	VarietyScore float64 `json:"varietyScore"`
	RegionScore  float64 `json:"regionScore"`
	ClimateScore float64 `json:"climateScore"`
	SeasonScore  float64 `json:"seasonScore"`
	QualityScore float64 `json:"qualityScore"`
	IntentScore  float64 `json:"intentScore"`
}

// PredictResponse is the model's scoring answer. A non-empty Error field marks
// a model-side failure even on HTTP 200.
type PredictResponse struct {
	Score      float64 `json:"score"`
	Grade      string  `json:"grade"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// responseSchema guards against trusting malformed model output.
const responseSchema = `{
	"type": "object",
	"required": ["score", "grade"],
	"properties": {
		"score":      {"type": "number", "minimum": 0, "maximum": 100},
		"grade":      {"type": "string", "enum": ["A", "B", "C", "D"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"error":      {"type": "string"}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

// Client calls the external scoring endpoint.
type Client struct {
	endpoint string
	http     *httpclient.Client
}

func NewClient(endpoint string, http *httpclient.Client) *Client {
	return &Client{endpoint: endpoint, http: http}
}

// Predict posts the dimension scores and returns the model's answer. Any
// transport error, non-2xx status, schema violation or embedded error field
// is returned as an error; the caller falls back to the rule engine.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrPredictFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrPredictFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrPredictFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrPredictFailed, err)
	}

	if err := validateResponse(raw); err != nil {
		return nil, err
	}

	var out PredictResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: model error: %s", ErrPredictFailed, out.Error)
	}
	return &out, nil
}

func validateResponse(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %v", ErrMalformedPayload, errs)
	}
	return nil
}
