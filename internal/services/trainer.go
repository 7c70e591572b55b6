package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// ModelClient talks to the external model service. The service owns the
// recommendation algorithm and the training procedure; this client only
// moves JSON.
type ModelClient interface {
	Train(ctx context.Context, req TrainRequest) (*types.ModelMetrics, error)
	Predict(ctx context.Context, req PredictRequest) ([]types.Recommendation, error)
}

type TrainRequest struct {
	Users    []*types.User     `json:"users"`
	Feedback []*types.Feedback `json:"feedback"`
}

type PredictRequest struct {
	Degree           string   `json:"degree"`
	UGSpecialization string   `json:"ug_specialization"`
	CGPA             float64  `json:"cgpa"`
	Skills           []string `json:"skills"`
	Interests        []string `json:"interests"`
	Certificates     []string `json:"certificates"`
	AspiringRole     string   `json:"aspiringRole"`
}

type httpModelClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

// NewHTTPModelClient builds a client with a request timeout so a dead model
// service fails the call instead of hanging the retrain slot.
func NewHTTPModelClient(baseLog *logger.Logger, baseURL string, timeout time.Duration) ModelClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &httpModelClient{
		log:        baseLog.With("service", "ModelClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (mc *httpModelClient) Train(ctx context.Context, req TrainRequest) (*types.ModelMetrics, error) {
	var metrics types.ModelMetrics
	if err := mc.postJSON(ctx, "/train", req, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (mc *httpModelClient) Predict(ctx context.Context, req PredictRequest) ([]types.Recommendation, error) {
	var out struct {
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	if err := mc.postJSON(ctx, "/predict", req, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (mc *httpModelClient) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, mc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := mc.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("model service %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("model service %s: read response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		mc.log.Warn("Model service returned non-200", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("model service %s: status %d: %s", path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("model service %s: decode response: %w", path, err)
	}
	return nil
}
