package validation

import (
	"testing"

	apperrors "go-housing-estimator/internal/errors"
)

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	if validator == nil {
		t.Fatal("Expected non-nil URL validator")
	}

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Errorf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
}

func TestValidateArtifactURL_ValidURLs(t *testing.T) {
	validator := NewURLValidator()

	validURLs := []string{
		"http://models.internal:9000",
		"https://registry.example.com/housing/v3",
		"http://192.168.1.1/artifacts/",
	}

	for _, url := range validURLs {
		if err := validator.ValidateArtifactURL(url); err != nil {
			t.Errorf("Expected valid URL %s to pass validation, got error: %v", url, err)
		}
	}
}

func TestValidateArtifactURL_Invalid(t *testing.T) {
	validator := NewURLValidator()

	tests := []struct {
		url     string
		message string
	}{
		{"", "URL cannot be empty"},
		{"   ", "URL cannot be empty"},
		{"ftp://example.com/model.yaml", "URL scheme not allowed"},
		{"file://local/path", "URL scheme not allowed"},
		{"not-a-url", "URL scheme not allowed"},
		{"http://", "URL must have a valid host"},
		{"https:///path", "URL must have a valid host"},
		{"https://example.com/models?token=abc", "URL must not carry a query or fragment"},
		{"://missing-scheme", "Invalid URL format"},
	}

	for _, tt := range tests {
		err := validator.ValidateArtifactURL(tt.url)
		if err == nil {
			t.Errorf("Expected '%s' to fail validation", tt.url)
			continue
		}

		appErr, ok := err.(*apperrors.AppError)
		if !ok {
			t.Errorf("Expected AppError, got: %T", err)
			continue
		}
		if appErr.Type != apperrors.ErrorTypeValidation {
			t.Errorf("Expected validation error type, got %s", appErr.Type)
		}
		if appErr.Message != tt.message {
			t.Errorf("For '%s' expected '%s', got: %s", tt.url, tt.message, appErr.Message)
		}
	}
}

func TestValidateArtifactURL_RestrictedHosts(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https"}, []string{"registry.example.com"})

	if err := validator.ValidateArtifactURL("https://registry.example.com:8443/models"); err != nil {
		t.Errorf("Expected allowed host to pass, got: %v", err)
	}
	if err := validator.ValidateArtifactURL("https://elsewhere.com/models"); err == nil {
		t.Error("Expected disallowed host to fail validation")
	}
	if err := validator.ValidateArtifactURL("http://registry.example.com/models"); err == nil {
		t.Error("Expected http scheme to be rejected")
	}
}

func TestIsHostAllowed(t *testing.T) {
	validator := NewURLValidator()
	if !validator.isHostAllowed("example.com") {
		t.Error("Expected any host to be allowed when no restrictions")
	}

	restricted := NewURLValidatorWithOptions([]string{"http", "https"}, []string{"example.com", "trusted.com"})
	if !restricted.isHostAllowed("trusted.com") {
		t.Error("Expected trusted.com to be allowed")
	}
	if restricted.isHostAllowed("malicious.com") {
		t.Error("Expected malicious.com to be disallowed")
	}
}
