package domain

import (
	"time"

	"github.com/google/uuid"
)

// Region is the bounding box of a detected text region, in pixels.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OCRLine is one text region detected by an OCR pass.
// Only Text is consumed by the analysis pipeline.
type OCRLine struct {
	Bounds     Region  `json:"bounds"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the outcome of a completed three-stage food-safety analysis.
type Analysis struct {
	ID             uuid.UUID `json:"id"`
	NutritionText  string    `json:"nutrition_text"`
	MedicalText    string    `json:"medical_text"`
	Recommendation string    `json:"recommendation"`
	Model          Model     `json:"model"`
	Language       Language  `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}
