package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-housing-estimator/internal/config"

	"github.com/gin-gonic/gin"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Host:                 "127.0.0.1",
		Port:                 "8080",
		RequestTimeout:       5 * time.Second,
		ArtifactFetchTimeout: 5 * time.Second,
		MaxRequestBodySize:   4096,
		ArtifactSource:       "file",
		ArtifactDir:          dir,
		TransformerArtifact:  "transformer.yaml",
		ModelArtifact:        "model.json",
		CategoryFallback:     "nearest",
		NearestMaxDistance:   2,
		PredictionCacheSize:  16,
		ArtifactWatch:        true,
		LogLevel:             "info",
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := NewContainer(ctx, testConfig("../../artifacts"))
	if err != nil {
		t.Fatalf("Failed to build container: %v", err)
	}
	defer c.Close()
	c.Start(ctx)

	if c.Service().Bundle() == nil {
		t.Fatal("Expected artifacts to be loaded")
	}

	body := `{"longitude": -122.23, "latitude": 37.88, "housing_median_age": 41,
	  "total_rooms": 880, "total_bedrooms": 129, "population": 322, "households": 126,
	  "median_income": 8.3252, "ocean_proximity": "near bay"}`
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "predicted_price") {
		t.Errorf("Unexpected prediction response %d: %s", w.Code, w.Body.String())
	}
}

func TestNewContainer_MissingArtifacts(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.ArtifactWatch = false

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Error("Expected error when artifacts are missing")
	}
}
