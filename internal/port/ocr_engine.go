package port

import (
	"context"

	"foodsafe/internal/domain"
)

// OCREngine abstracts optical character recognition over an image file.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) ([]domain.OCRLine, error)
}
