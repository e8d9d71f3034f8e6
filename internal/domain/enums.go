package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType represents the allowed image types for upload.
type FileType string

const (
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileTypeFromName returns the FileType for a file name's extension.
func FileTypeFromName(name string) (FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnsupportedFileType)
	}
	return ft, nil
}

// Model identifies a hosted chat-completion model.
type Model string

const (
	ModelLlama33Versatile Model = "llama-3.3-70b-versatile"
	ModelLlama32Preview   Model = "llama-3.2-1b-preview"
	ModelDeepSeekR1Llama  Model = "deepseek-r1-distill-llama-70b"
	ModelQwen25           Model = "qwen-2.5-32b"
)

// DefaultModel is used for the refinement stages and when no model is selected.
const DefaultModel = ModelLlama33Versatile

// Models lists the selectable models in display order.
var Models = []Model{
	ModelLlama33Versatile,
	ModelLlama32Preview,
	ModelDeepSeekR1Llama,
	ModelQwen25,
}

// Language is the target language for the translated recommendation.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageFrench  Language = "French"
	LanguageSpanish Language = "Spanish"
	LanguageGerman  Language = "German"
	LanguageHindi   Language = "Hindi"
)

// DefaultLanguage is used when no language is selected.
const DefaultLanguage = LanguageEnglish

// Languages lists the selectable languages in display order.
var Languages = []Language{
	LanguageEnglish,
	LanguageFrench,
	LanguageSpanish,
	LanguageGerman,
	LanguageHindi,
}

// ParseModel returns the Model matching s exactly, or a ValidationError.
func ParseModel(s string) (Model, error) {
	s = strings.TrimSpace(s)
	for _, m := range Models {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "model", Value: s, Err: ErrInvalidModel}
}

// ParseLanguage returns the Language matching s (case-insensitive), or a ValidationError.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(string(l), s) {
			return l, nil
		}
	}
	return "", &ValidationError{Field: "language", Value: s, Err: ErrInvalidLanguage}
}

// Valid reports whether m is one of the selectable models.
func (m Model) Valid() bool {
	for _, v := range Models {
		if v == m {
			return true
		}
	}
	return false
}

// Valid reports whether l is one of the selectable languages.
func (l Language) Valid() bool {
	for _, v := range Languages {
		if v == l {
			return true
		}
	}
	return false
}
