package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/factory"
	"go-housing-estimator/internal/features"
	"go-housing-estimator/internal/storage"
)

const smallTransformer = `
version: t1
numeric:
  - {name: longitude,          impute: 0, center: 0, scale: 1}
  - {name: latitude,           impute: 0, center: 0, scale: 1}
  - {name: housing_median_age, impute: 0, center: 0, scale: 1}
  - {name: total_rooms,        impute: 0, center: 0, scale: 1}
  - {name: total_bedrooms,     impute: 0, center: 0, scale: 1}
  - {name: population,         impute: 0, center: 0, scale: 1}
  - {name: households,         impute: 0, center: 0, scale: 1}
  - {name: median_income,      impute: 0, center: 0, scale: 1}
categorical:
  name: ocean_proximity
  categories: ["<1H OCEAN", "INLAND", "ISLAND", "NEAR BAY", "NEAR OCEAN"]
`

// 13 columns: 8 numeric plus 5 one-hot
const smallModel = `{"version": "m1", "kind": "linear", "n_features": 13,
  "coefficients": [0,0,0,0,0,0,0,0,0,0,0,0,0], "intercept": 200000}`

func writeArtifacts(t *testing.T, files map[string]string) storage.ArtifactSource {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return storage.NewFileSource(dir)
}

func newRepo(source storage.ArtifactSource) ArtifactRepository {
	return NewArtifactRepository(source, "transformer.yaml", "model.json", nil, factory.NewModelFactory())
}

func TestLoad_Success(t *testing.T) {
	source := writeArtifacts(t, map[string]string{
		"transformer.yaml": smallTransformer,
		"model.json":       smallModel,
	})

	bundle, err := newRepo(source).Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if bundle.Version() != "t1+m1" {
		t.Errorf("Expected version t1+m1, got %q", bundle.Version())
	}
	if bundle.Transformer.Width() != 13 || bundle.Model.Features() != 13 {
		t.Errorf("Unexpected widths %d/%d", bundle.Transformer.Width(), bundle.Model.Features())
	}
	if bundle.LoadedAt.IsZero() {
		t.Error("Expected LoadedAt to be set")
	}
}

func TestLoad_ShippedArtifacts(t *testing.T) {
	repo := newRepo(storage.NewFileSource("../../artifacts"))

	bundle, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Shipped artifacts failed to load: %v", err)
	}
	if bundle.Model.Kind() != "linear" {
		t.Errorf("Expected linear model, got %s", bundle.Model.Kind())
	}

	raw := map[string]any{
		"longitude": "-122.23", "latitude": "37.88", "housing_median_age": "41",
		"total_rooms": "880", "total_bedrooms": "129", "population": "322",
		"households": "126", "median_income": "8.3252", "ocean_proximity": "NEAR BAY",
	}
	rec, err := features.ParseRecord(raw)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	vector, err := bundle.Transformer.Transform(rec)
	if err != nil {
		t.Fatalf("Unexpected transform error: %v", err)
	}
	price, err := bundle.Model.Predict(vector)
	if err != nil {
		t.Fatalf("Unexpected predict error: %v", err)
	}
	if price <= 0 {
		t.Errorf("Expected a positive price for a Bay Area district, got %f", price)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantType apperrors.ErrorType
		wantErr  error
	}{
		{
			name:     "transformer missing",
			files:    map[string]string{"model.json": smallModel},
			wantType: apperrors.ErrorTypeNotFound,
			wantErr:  storage.ErrArtifactNotFound,
		},
		{
			name:     "model missing",
			files:    map[string]string{"transformer.yaml": smallTransformer},
			wantType: apperrors.ErrorTypeNotFound,
			wantErr:  storage.ErrArtifactNotFound,
		},
		{
			name:     "empty transformer",
			files:    map[string]string{"transformer.yaml": "", "model.json": smallModel},
			wantType: apperrors.ErrorTypeArtifact,
			wantErr:  ErrEmptyArtifact,
		},
		{
			name:     "unknown key",
			files:    map[string]string{"transformer.yaml": smallTransformer + "extra: 1\n", "model.json": smallModel},
			wantType: apperrors.ErrorTypeArtifact,
		},
		{
			name: "unsupported model kind",
			files: map[string]string{
				"transformer.yaml": smallTransformer,
				"model.json":       `{"version": "m1", "kind": "svm", "n_features": 13}`,
			},
			wantType: apperrors.ErrorTypeArtifact,
		},
		{
			name: "width mismatch",
			files: map[string]string{
				"transformer.yaml": smallTransformer,
				"model.json":       `{"version": "m1", "kind": "linear", "coefficients": [1, 2, 3]}`,
			},
			wantType: apperrors.ErrorTypeArtifact,
			wantErr:  ErrWidthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := newRepo(writeArtifacts(t, tt.files)).Load(context.Background())
			if err == nil {
				t.Fatalf("Expected error, got bundle %v", bundle)
			}
			if !apperrors.IsType(err, tt.wantType) {
				t.Errorf("Expected %s error, got: %v", tt.wantType, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v in chain, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	source := writeArtifacts(t, map[string]string{
		"transformer.yaml": smallTransformer,
		"model.json":       smallModel,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newRepo(source).Load(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
