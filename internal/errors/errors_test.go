package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"malformed input", NewMalformedInputError("latitude", "bad", cause), ErrorTypeMalformedInput, http.StatusBadRequest},
		{"transformation", NewTransformationError("bad", cause), ErrorTypeTransformation, http.StatusUnprocessableEntity},
		{"model", NewModelError("bad", cause), ErrorTypeModel, http.StatusInternalServerError},
		{"prediction", NewPredictionError("bad", cause), ErrorTypePrediction, http.StatusInternalServerError},
		{"artifact", NewArtifactError("bad", cause), ErrorTypeArtifact, http.StatusInternalServerError},
		{"validation", NewValidationError("bad", cause), ErrorTypeValidation, http.StatusBadRequest},
		{"network", NewNetworkError("bad", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"timeout", NewTimeoutError("bad", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"internal", NewInternalError("bad", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"not found", NewNotFoundError("bad", cause), ErrorTypeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, tt.err.StatusCode)
			}
			if !stderrors.Is(tt.err, cause) {
				t.Error("Expected cause to be unwrappable")
			}
		})
	}
}

func TestMalformedInputCarriesField(t *testing.T) {
	err := NewMalformedInputError("median_income", "field is not a valid number", nil)
	if err.Field != "median_income" {
		t.Errorf("Expected field median_income, got %q", err.Field)
	}
	if err.Error() != "malformed_input: field is not a valid number" {
		t.Errorf("Unexpected error text %q", err.Error())
	}
}

func TestUserMessageHidesCause(t *testing.T) {
	err := NewArtifactError("failed to read model artifact", stderrors.New("open /srv/secret/model.json"))
	if strings.Contains(err.UserMessage(), "/srv/secret") {
		t.Errorf("User message leaked cause: %q", err.UserMessage())
	}
	if !strings.Contains(err.Error(), "/srv/secret") {
		t.Errorf("Expected Error() to include cause, got %q", err.Error())
	}

	err.Details = "retry later"
	if err.UserMessage() != "failed to read model artifact: retry later" {
		t.Errorf("Unexpected user message %q", err.UserMessage())
	}
}

func TestHelpersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handle: %w", NewModelError("model failed", nil))

	appErr, ok := As(wrapped)
	if !ok || appErr.Type != ErrorTypeModel {
		t.Fatalf("Expected model AppError, got %v", appErr)
	}
	if !IsType(wrapped, ErrorTypeModel) || IsType(wrapped, ErrorTypePrediction) {
		t.Error("IsType returned the wrong answer for a wrapped error")
	}
	if GetStatusCode(wrapped) != http.StatusInternalServerError {
		t.Errorf("Unexpected status %d", GetStatusCode(wrapped))
	}

	plain := stderrors.New("plain")
	if _, ok := As(plain); ok {
		t.Error("Expected plain error not to be an AppError")
	}
	if GetStatusCode(plain) != http.StatusInternalServerError {
		t.Error("Expected 500 for a plain error")
	}
}

func TestStatusCodeFor(t *testing.T) {
	tests := map[ErrorType]int{
		"":                      http.StatusOK,
		ErrorTypeMalformedInput: http.StatusBadRequest,
		ErrorTypeTransformation: http.StatusUnprocessableEntity,
		ErrorTypeModel:          http.StatusInternalServerError,
		ErrorTypePrediction:     http.StatusInternalServerError,
		ErrorTypeTimeout:        http.StatusGatewayTimeout,
	}
	for in, want := range tests {
		if got := StatusCodeFor(in); got != want {
			t.Errorf("StatusCodeFor(%q) = %d, want %d", in, got, want)
		}
	}
}
