package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/models"
	"github.com/fasalvikas/fasal-vikas/internal/nn"
)

func writeYieldModel(t *testing.T, dir string) {
	t.Helper()

	width := features.DefaultEncoder().Width()
	coef := make([]float64, width)
	coef[width-1] = 0.5
	m := &nn.YieldRegressor{
		Width:      width,
		Estimators: []nn.Estimator{{Kind: nn.KindLinear, Coef: coef, Intercept: 1}},
	}
	if err := m.Save(filepath.Join(dir, "voting_yield.gob")); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"fasal-vikas"}, args...))
	return out.String(), err
}

func TestRegistriesCommand(t *testing.T) {
	out, err := run(t, "registries")
	if err != nil {
		t.Fatalf("registries failed: %v", err)
	}
	for _, want := range []string{"West Bengal", "Rice", "Kharif"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestPredictCommand(t *testing.T) {
	dir := t.TempDir()
	writeYieldModel(t, dir)

	out, err := run(t, "--models-dir", dir, "--log-level", "error", "predict",
		"--state", "West Bengal", "--crop", "rice", "--season", "Kharif",
		"--ph", "5", "--rainfall", "50", "--temperature", "30",
		"--area", "0.5", "--production", "5", "--json")
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	var resp models.YieldResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if resp.PredictedYieldDisplay != "3.50" {
		t.Errorf("Expected 3.50, got %s", resp.PredictedYieldDisplay)
	}
	if len(resp.RecommendationIDs) == 0 || resp.RecommendationIDs[0] != "area.small" {
		t.Errorf("Expected small area advice first, got %v", resp.RecommendationIDs)
	}
}

func TestPredictCommandUnknownCrop(t *testing.T) {
	dir := t.TempDir()
	writeYieldModel(t, dir)

	_, err := run(t, "--models-dir", dir, "--log-level", "error", "predict",
		"--state", "West Bengal", "--crop", "Quinoa", "--season", "Kharif",
		"--ph", "5", "--rainfall", "50", "--temperature", "30",
		"--area", "0.5", "--production", "5")
	if err == nil {
		t.Fatal("Expected error for unknown crop")
	}
	if !errors.Is(err, features.ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestPredictCommandMissingModel(t *testing.T) {
	_, err := run(t, "--models-dir", t.TempDir(), "--log-level", "error", "predict",
		"--state", "West Bengal", "--crop", "rice", "--season", "Kharif",
		"--ph", "5", "--rainfall", "50", "--temperature", "30",
		"--area", "0.5", "--production", "5")
	if err == nil {
		t.Fatal("Expected error for missing model")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Fasal Vikas v"+version) {
		t.Errorf("Expected version output, got %q", out)
	}
}
