// Package captcha provides the challenge-solving capability for the booking
// flow: an automatic recognizer behind an HTTP service boundary and a manual
// terminal fallback. The solver is a long-lived handle injected once at
// startup, replacing repeated model loads.
package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Solver recognizes the text in a challenge image. An empty result means the
// image could not be read; that is a normal outcome, not an error. Errors are
// reserved for transport failures.
type Solver interface {
	Solve(ctx context.Context, image []byte) (string, error)
}

// serviceResponse is the OCR service answer envelope.
type serviceResponse struct {
	Result string `json:"result"`
}

// ServiceSolver posts challenge images to a recognition service.
type ServiceSolver struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewServiceSolver builds a solver against the given OCR endpoint.
func NewServiceSolver(endpoint string, timeout time.Duration, logger *zap.Logger) *ServiceSolver {
	return &ServiceSolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("ocr"),
	}
}

// Solve submits the image and returns the recognized text, uppercased the way
// the site renders its challenges. Unrecognizable images come back empty.
func (s *ServiceSolver) Solve(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// A non-200 answer means the service is up but could not produce a
		// reading; treat it like an unreadable image so the manual branch
		// takes over.
		s.logger.Warn("OCR service returned non-200", zap.Int("status", resp.StatusCode))
		io.Copy(io.Discard, resp.Body)
		return "", nil
	}

	var parsed serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Warn("OCR service returned malformed body", zap.Error(err))
		return "", nil
	}
	return strings.ToUpper(strings.TrimSpace(parsed.Result)), nil
}

// NopSolver never recognizes anything, forcing the manual branch. Used when
// no OCR endpoint is configured.
type NopSolver struct{}

func (NopSolver) Solve(context.Context, []byte) (string, error) { return "", nil }
