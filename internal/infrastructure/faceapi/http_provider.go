// Package faceapi provides the HTTP client for the camera sidecar.
package faceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

// HTTPProvider calls the face analysis sidecar over HTTP. The sidecar owns
// the camera and the detection models; this process only consumes its output.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	logger  *logging.ChanneledLogger
}

// NewHTTPProvider creates a provider against the sidecar at baseURL.
func NewHTTPProvider(baseURL string, timeout time.Duration, logger *logging.ChanneledLogger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// detectionResponse is the sidecar's wire format for one analysis pass.
type detectionResponse struct {
	FaceDetected bool               `json:"faceDetected"`
	Age          float64            `json:"age"`
	Gender       string             `json:"gender"`
	Expressions  map[string]float64 `json:"expressions"`
}

// Detect requests one analysis pass. A frame without a face yields (nil, nil).
func (p *HTTPProvider) Detect(ctx context.Context) (*scan.Observation, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/detect", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build detect request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Scan().Error("Face provider request failed", "error", err.Error(), "duration", time.Since(start))
		return nil, fmt.Errorf("face provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Scan().Error("Face provider returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("face provider returned status %d", resp.StatusCode)
	}

	var dr detectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}

	if !dr.FaceDetected {
		p.logger.Scan().Debug("No face in frame", "duration", time.Since(start))
		return nil, nil
	}

	expressions := make(map[scan.Expression]float64, len(dr.Expressions))
	for label, score := range dr.Expressions {
		expressions[scan.Expression(label)] = score
	}

	obs := &scan.Observation{
		Age:         int(math.Round(dr.Age)),
		Gender:      scan.ParseGender(dr.Gender),
		Expressions: expressions,
	}
	if err := obs.Validate(); err != nil {
		return nil, fmt.Errorf("face provider returned invalid observation: %w", err)
	}

	p.logger.Scan().Debug("Face detected",
		"age", obs.Age,
		"gender", string(obs.Gender),
		"duration", time.Since(start))
	return obs, nil
}
