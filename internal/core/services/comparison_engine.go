package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"relic-ledger/internal/config"
	"relic-ledger/internal/core/domain"
)

// ComparisonEngine is the single contract for authenticity comparison.
// Both the persisting return workflow and the preview endpoints go through
// it; persistence is the caller's concern, never the engine's.
type ComparisonEngine interface {
	Compare(ctx context.Context, beforePhoto, afterPhoto string) (*domain.ComparisonResult, error)
}

// NewComparisonEngine builds the configured engine implementation
func NewComparisonEngine(cfg *config.Config) ComparisonEngine {
	if cfg.AI.UseMock {
		return NewMockComparisonEngine()
	}
	return NewHTTPComparisonEngine(cfg.AI)
}

// ============================================================
// HTTP implementation
// ============================================================

// HTTPComparisonEngine calls the external AI comparison service
type HTTPComparisonEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPComparisonEngine creates an engine client with a bounded timeout
func NewHTTPComparisonEngine(cfg config.AIConfig) *HTTPComparisonEngine {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPComparisonEngine{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type compareRequest struct {
	BeforePhoto string `json:"photo_url_before"`
	AfterPhoto  string `json:"photo_url_after"`
}

// Compare posts both photo references to the AI service and decodes its
// verdict. Any transport failure, timeout or non-200 maps to
// domain.ErrEngineUnavailable so callers can abort without partial state.
func (e *HTTPComparisonEngine) Compare(ctx context.Context, beforePhoto, afterPhoto string) (*domain.ComparisonResult, error) {
	payload, err := json.Marshal(compareRequest{
		BeforePhoto: beforePhoto,
		AfterPhoto:  afterPhoto,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/compare", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEngineUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: engine returned %d: %s", domain.ErrEngineUnavailable, resp.StatusCode, string(body))
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrEngineUnavailable, err)
	}

	if !result.Conclusion.IsValid() {
		return nil, fmt.Errorf("%w: unknown conclusion %q", domain.ErrEngineUnavailable, result.Conclusion)
	}
	if result.EvaluatedAt.IsZero() {
		result.EvaluatedAt = time.Now()
	}

	return &result, nil
}

// ============================================================
// Mock implementation
// ============================================================

// MockComparisonEngine produces deterministic-shaped random verdicts for
// development and tests. Score bands: >=0.85 normal, >=0.75 suspicious,
// below that abnormal. The rng is mutex-guarded: sync and async callers
// share one engine instance.
type MockComparisonEngine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockComparisonEngine creates a mock engine
func NewMockComparisonEngine() *MockComparisonEngine {
	return &MockComparisonEngine{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Compare fabricates a verdict without looking at the photos
func (e *MockComparisonEngine) Compare(ctx context.Context, beforePhoto, afterPhoto string) (*domain.ComparisonResult, error) {
	if beforePhoto == "" || afterPhoto == "" {
		return nil, errors.New("mock engine: both photo references are required")
	}

	dimensions := make(map[string]domain.DimensionResult, len(domain.ComparisonDimensions))
	var sum float64
	e.mu.Lock()
	for _, name := range domain.ComparisonDimensions {
		score := 0.70 + e.rng.Float64()*0.25
		dimensions[name] = domain.DimensionResult{
			Status:      dimensionStatusFor(score),
			Score:       score,
			Description: dimensionDescription(name, score),
		}
		sum += score
	}
	e.mu.Unlock()

	confidence := sum / float64(len(domain.ComparisonDimensions))
	return &domain.ComparisonResult{
		Conclusion:  conclusionFor(confidence),
		Confidence:  confidence,
		Dimensions:  dimensions,
		EvaluatedAt: time.Now(),
	}, nil
}

func dimensionStatusFor(score float64) domain.DimensionStatus {
	switch {
	case score >= 0.85:
		return domain.DimensionNormal
	case score >= 0.75:
		return domain.DimensionSuspicious
	default:
		return domain.DimensionAbnormal
	}
}

func conclusionFor(confidence float64) domain.Conclusion {
	switch {
	case confidence >= 0.85:
		return domain.ConclusionAuthentic
	case confidence >= 0.75:
		return domain.ConclusionSuspicious
	default:
		return domain.ConclusionFake
	}
}

func dimensionDescription(name string, score float64) string {
	if score >= 0.85 {
		return fmt.Sprintf("%s features match the loan-time photo", name)
	}
	return fmt.Sprintf("%s shows differences against the loan-time photo", name)
}
