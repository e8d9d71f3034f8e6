// Package tesseract implements port.OCREngine on top of the gosseract client.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"foodsafe/internal/domain"
)

// Client is the subset of *gosseract.Client the engine uses.
type Client interface {
	SetImage(imagepath string) error
	SetLanguage(langs ...string) error
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// Engine recognizes text lines with a single long-lived Tesseract client.
// The client is not safe for concurrent use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	client Client
}

// NewEngine creates an Engine backed by a new gosseract client configured
// for languages (Tesseract codes such as "eng"). Close releases it.
func NewEngine(languages []string) (*Engine, error) {
	c := gosseract.NewClient()
	e, err := NewEngineWithClient(c, languages)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return e, nil
}

// NewEngineWithClient creates an Engine around an existing client.
func NewEngineWithClient(c Client, languages []string) (*Engine, error) {
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	return &Engine{client: c}, nil
}

// Recognize returns one OCRLine per detected text line, top to bottom.
// Confidence is normalized to [0,1]. Failures are *domain.OCRFailureError.
func (e *Engine) Recognize(ctx context.Context, imagePath string) ([]domain.OCRLine, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return nil, &domain.OCRFailureError{Path: imagePath, Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &domain.OCRFailureError{Path: imagePath, Err: err}
	}
	if err := e.client.SetImage(imagePath); err != nil {
		return nil, &domain.OCRFailureError{Path: imagePath, Err: fmt.Errorf("set image: %w", err)}
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, &domain.OCRFailureError{Path: imagePath, Err: fmt.Errorf("recognize lines: %w", err)}
	}

	lines := make([]domain.OCRLine, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, domain.OCRLine{
			Bounds: domain.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence / 100.0,
		})
	}
	return lines, nil
}

// Close releases the underlying Tesseract client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
