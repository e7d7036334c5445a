package i18n_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fasalvikas/fasal-vikas/internal/advisory"
	"github.com/fasalvikas/fasal-vikas/internal/i18n"
)

// adviceSample exercises every advisory rule at least once
func adviceSample() []i18n.Message {
	msgs := advisory.Generate(advisory.Input{
		Crop: "Rice", Season: "Summer", Area: 0.5, PH: 5.0,
		Rainfall: 10, Temperature: 40, Production: 20, PredictedYield: 1,
	})
	msgs = append(msgs, advisory.Generate(advisory.Input{Crop: "Rice", Season: "Kharif", Area: 5, PH: 6.5, Rainfall: 10})...)
	msgs = append(msgs, advisory.Generate(advisory.Input{Crop: "Wheat", Season: "Rabi", Area: 20, PH: 9, Temperature: 5})...)
	msgs = append(msgs, advisory.Generate(advisory.Input{Crop: "Cotton", Season: "Kharif", Area: 5, PH: 7, Temperature: 10})...)
	msgs = append(msgs, advisory.Generate(advisory.Input{Crop: "Soyabean", Season: "Kharif", Area: 5, PH: 7, Rainfall: 10})...)
	return msgs
}

func uiSample() []i18n.Message {
	return []i18n.Message{
		i18n.UI(i18n.MsgAppName),
		i18n.UI(i18n.MsgPredictedYield, "3.50"),
		i18n.UI(i18n.MsgRecsTitle),
		i18n.UI(i18n.MsgMissingInput),
		i18n.UI(i18n.MsgMissingNPK),
		i18n.UI(i18n.MsgShapeMismatch, 75, 74),
		i18n.UI(i18n.MsgUnknownCategory, "crop", "Quinoa"),
		i18n.UI(i18n.MsgRecommendedCrop, "rice"),
		i18n.UI(i18n.MsgFeatureDisabled),
	}
}

// Every supported language must have a table entry for every advisory and
// interface message that accepts the same args as the English template.
func TestLocalesCoverAdvice(t *testing.T) {
	l, err := i18n.NewLocalizer(nil)
	if err != nil {
		t.Fatalf("NewLocalizer failed: %v", err)
	}

	advice := adviceSample()
	seen := map[string]bool{}
	for _, m := range advice {
		seen[m.ID] = true
	}
	for _, id := range advisory.IDs() {
		if !seen[id] {
			t.Errorf("Advice %s not exercised", id)
		}
	}

	msgs := append(advice, uiSample()...)
	for _, lang := range i18n.Languages() {
		if lang.Code == i18n.Source {
			continue
		}
		t.Run(lang.Code, func(t *testing.T) {
			for _, m := range msgs {
				got := l.Localize(context.Background(), lang.Code, m)
				if got == m.Text() {
					t.Errorf("Expected %s text for %s, got English", lang.Name, m.ID)
				}
				if strings.Contains(got, "%!") {
					t.Errorf("Bad format args for %s: %q", m.ID, got)
				}
			}
		})
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	l, err := i18n.NewLocalizer(nil)
	if err != nil {
		t.Fatalf("NewLocalizer failed: %v", err)
	}

	coverage := l.Coverage()
	want := len(advisory.IDs()) + len(uiSample())
	for _, lang := range i18n.Languages() {
		if lang.Code == i18n.Source {
			continue
		}
		if got := coverage[lang.Code]; got != want {
			t.Errorf("Expected %d entries for %s, got %d", want, lang.Code, got)
		}
	}
}

func TestLocalizedArgsAppear(t *testing.T) {
	l, _ := i18n.NewLocalizer(nil)
	msgs := advisory.Generate(advisory.Input{Crop: "Maize", Season: "Kharif", Area: 12.5, PH: 7})

	for _, lang := range i18n.Languages() {
		got := l.Localize(context.Background(), lang.Code, msgs[0])
		if !strings.Contains(got, "Maize") || !strings.Contains(got, "12.50") {
			t.Errorf("Expected crop and area in %s text, got %q", lang.Code, got)
		}
	}

	got := l.Localize(context.Background(), "ta", i18n.UI(i18n.MsgShapeMismatch, 75, 74))
	if !strings.Contains(got, "75") || !strings.Contains(got, "74") {
		t.Errorf("Expected both widths in Tamil text, got %q", got)
	}
}
