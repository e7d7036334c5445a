package i18n

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	f.calls++
	return f.out, f.err
}

// untabled has no entry in any locale table
var untabled = Message{ID: "ui.new_message", Format: "New message for %d fields", Args: []any{3}}

func newTestLocalizer(t *testing.T, remote Translator) *Localizer {
	t.Helper()
	l, err := NewLocalizer(remote)
	if err != nil {
		t.Fatalf("NewLocalizer failed: %v", err)
	}
	return l
}

func TestLocalizeEnglishIsSource(t *testing.T) {
	remote := &fakeTranslator{out: "nope"}
	l := newTestLocalizer(t, remote)

	got := l.Localize(context.Background(), "en", UI(MsgRecommendedCrop, "rice"))
	if got != "Recommended Crop: rice" {
		t.Errorf("Expected English text, got %q", got)
	}
	if remote.calls != 0 {
		t.Errorf("Expected no remote call for English, got %d", remote.calls)
	}
}

func TestLocalizeTableHit(t *testing.T) {
	remote := &fakeTranslator{out: "nope"}
	l := newTestLocalizer(t, remote)

	got := l.Localize(context.Background(), "hi", UI(MsgPredictedYield, "3.25"))
	if !strings.Contains(got, "3.25") || !strings.Contains(got, "टन/हेक्टेयर") {
		t.Errorf("Expected Hindi template with value, got %q", got)
	}
	if remote.calls != 0 {
		t.Errorf("Expected table hit to skip remote, got %d calls", remote.calls)
	}
}

func TestLocalizeTableMissUsesRemote(t *testing.T) {
	remote := &fakeTranslator{out: "নতুন বার্তা"}
	l := newTestLocalizer(t, remote)

	got := l.Localize(context.Background(), "bn", untabled)
	if got != "নতুন বার্তা" {
		t.Errorf("Expected remote translation, got %q", got)
	}
	if remote.calls != 1 {
		t.Errorf("Expected 1 remote call, got %d", remote.calls)
	}
}

func TestLocalizeFailsOpen(t *testing.T) {
	remote := &fakeTranslator{err: ErrTranslationUnavailable}
	l := newTestLocalizer(t, remote)

	got := l.Localize(context.Background(), "ta", untabled)
	if got != "New message for 3 fields" {
		t.Errorf("Expected English fallback, got %q", got)
	}
}

func TestLocalizeWithoutRemote(t *testing.T) {
	l := newTestLocalizer(t, nil)

	got := l.Localize(context.Background(), "kn", untabled)
	if got != "New message for 3 fields" {
		t.Errorf("Expected English fallback, got %q", got)
	}
}

func TestLocalizeUnsupportedLanguage(t *testing.T) {
	remote := &fakeTranslator{out: "nope"}
	l := newTestLocalizer(t, remote)

	got := l.Localize(context.Background(), "fr", UI(MsgRecsTitle))
	if got != "Recommendations to Improve Yield" {
		t.Errorf("Expected English for unsupported language, got %q", got)
	}
	if remote.calls != 0 {
		t.Errorf("Expected no remote call for unsupported language")
	}
}

func TestLocalizeAllKeepsOrder(t *testing.T) {
	l := newTestLocalizer(t, nil)
	msgs := []Message{UI(MsgRecsTitle), UI(MsgMissingInput), UI(MsgAppName)}

	got := l.LocalizeAll(context.Background(), "en", msgs)
	want := []string{"Recommendations to Improve Yield", "Please enter all required values", "Fasal Vikas"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		header string
		want   string
	}{
		{"query wins", "hi", "ta", "hi"},
		{"query region tag", "hi-IN", "", "hi"},
		{"unsupported query falls to header", "fr", "ta-IN,en;q=0.5", "ta"},
		{"header quality", "", "en;q=0.3, bn;q=0.9", "bn"},
		{"header unsupported only", "", "fr, de", "en"},
		{"header zero quality", "", "hi;q=0", "en"},
		{"empty", "", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveLanguage(tt.query, tt.header); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	if len(langs) != 10 {
		t.Fatalf("Expected 10 languages, got %d", len(langs))
	}
	if langs[0].Code != "en" || langs[1].Code != "hi" || langs[9].Code != "pa" {
		t.Errorf("Unexpected language order: %v", langs)
	}

	langs[0].Code = "xx"
	if Languages()[0].Code != "en" {
		t.Error("Languages must return a copy")
	}
}

func TestErrTranslationUnavailableIsSentinel(t *testing.T) {
	wrapped := errors.Join(errors.New("dial failed"), ErrTranslationUnavailable)
	if !errors.Is(wrapped, ErrTranslationUnavailable) {
		t.Error("Expected errors.Is to match ErrTranslationUnavailable")
	}
}
