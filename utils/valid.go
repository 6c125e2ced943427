// utils/validation.go
package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/HSouheill/portfolio_backend/models"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request body validator
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidationMessage turns validator errors into one readable line
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "url":
			parts = append(parts, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// IsValidImageFile checks if the uploaded file has an allowed image extension
func IsValidImageFile(file *multipart.FileHeader) bool {
	_, ok := imageFormats[strings.ToLower(filepath.Ext(file.Filename))]
	return ok
}

// SanitizeInput trims spaces and removes control characters, keeping
// newlines and tabs. Output is HTML-escaped at render time, not here.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizeContactMessage cleans every field of a visitor's message
func SanitizeContactMessage(msg models.ContactMessage) models.ContactMessage {
	return models.ContactMessage{
		Name:    SanitizeInput(msg.Name),
		Email:   strings.ToLower(strings.TrimSpace(msg.Email)),
		Message: SanitizeInput(msg.Message),
	}
}

// SanitizeProjectForm cleans the free text fields of a project form
func SanitizeProjectForm(f models.ProjectForm) models.ProjectForm {
	f.Title = SanitizeInput(f.Title)
	f.Description = SanitizeInput(f.Description)
	f.TechStack = SanitizeInput(f.TechStack)
	f.GithubLink = strings.TrimSpace(f.GithubLink)
	f.Live = strings.TrimSpace(f.Live)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	return f
}
