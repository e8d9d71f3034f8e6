package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodsafe/internal/domain"
)

func TestParseModel(t *testing.T) {
	for _, m := range domain.Models {
		got, err := domain.ParseModel(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := domain.ParseModel("  qwen-2.5-32b ")
	require.NoError(t, err)
	assert.Equal(t, domain.ModelQwen25, got)

	_, err = domain.ParseModel("Qwen-2.5-32B")
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	_, err = domain.ParseModel("")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "model", vErr.Field)
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Language
	}{
		{"English", domain.LanguageEnglish},
		{"french", domain.LanguageFrench},
		{"SPANISH", domain.LanguageSpanish},
		{" German ", domain.LanguageGerman},
		{"Hindi", domain.LanguageHindi},
	}
	for _, tt := range tests {
		got, err := domain.ParseLanguage(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := domain.ParseLanguage("Italian")
	assert.ErrorIs(t, err, domain.ErrInvalidLanguage)
}

func TestSelectableSets(t *testing.T) {
	assert.Len(t, domain.Models, 4)
	assert.Len(t, domain.Languages, 5)
	assert.True(t, domain.DefaultModel.Valid())
	assert.True(t, domain.DefaultLanguage.Valid())
	assert.False(t, domain.Model(" llama-3.3-70b-versatile").Valid())
	assert.False(t, domain.Language("french").Valid())
}

func TestFileTypeFromName(t *testing.T) {
	tests := []struct {
		name string
		want domain.FileType
	}{
		{"label.jpg", domain.FileTypeJPG},
		{"label.JPEG", domain.FileTypeJPG},
		{"report.png", domain.FileTypePNG},
	}
	for _, tt := range tests {
		got, err := domain.FileTypeFromName(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, name := range []string{"report.pdf", "noext", "image.gif"} {
		_, err := domain.FileTypeFromName(name)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType, name)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")

	assert.ErrorIs(t, &domain.OCRFailureError{Path: "a.png", Err: cause}, cause)
	assert.ErrorIs(t, &domain.LoggingError{Path: "log.csv", Err: cause}, cause)
	assert.ErrorIs(t, &domain.RemoteServiceError{Provider: "groq", Err: cause}, cause)

	remote := &domain.RemoteServiceError{Provider: "groq", StatusCode: 503, Err: cause}
	assert.Contains(t, remote.Error(), "503")
	assert.Contains(t, (&domain.MissingInputError{Field: "food_label"}).Error(), "food_label")
}
