package i18n

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRemoteTranslate(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)

		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if r.PostForm.Get("q") != "Fasal Vikas" {
			t.Errorf("Expected q=Fasal Vikas, got %q", r.PostForm.Get("q"))
		}
		if r.PostForm.Get("source") != "en" || r.PostForm.Get("target") != "or" || r.PostForm.Get("format") != "text" {
			t.Errorf("Unexpected form: %v", r.PostForm)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"ଫସଲ ବିକାଶ"}`))
	}))
	defer server.Close()

	tr, err := NewRemoteTranslator(RemoteConfig{URL: server.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewRemoteTranslator failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := tr.Translate(context.Background(), "Fasal Vikas", "or")
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		if got != "ଫସଲ ବିକାଶ" {
			t.Errorf("Expected translated text, got %q", got)
		}
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("Expected second call to be cached, got %d requests", n)
	}
}

func TestRemoteTranslateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	tr, err := NewRemoteTranslator(RemoteConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewRemoteTranslator failed: %v", err)
	}

	if _, err := tr.Translate(context.Background(), "hello", "hi"); !errors.Is(err, ErrTranslationUnavailable) {
		t.Errorf("Expected ErrTranslationUnavailable, got %v", err)
	}
}

func TestRemoteTranslateBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"oops"}`))
	}))
	defer server.Close()

	tr, _ := NewRemoteTranslator(RemoteConfig{URL: server.URL})
	if _, err := tr.Translate(context.Background(), "hello", "hi"); !errors.Is(err, ErrTranslationUnavailable) {
		t.Errorf("Expected ErrTranslationUnavailable for missing translatedText, got %v", err)
	}
}

func TestRemoteTranslateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"translatedText":"late"}`))
	}))
	defer server.Close()

	tr, _ := NewRemoteTranslator(RemoteConfig{URL: server.URL, Timeout: 20 * time.Millisecond})
	if _, err := tr.Translate(context.Background(), "hello", "hi"); !errors.Is(err, ErrTranslationUnavailable) {
		t.Errorf("Expected ErrTranslationUnavailable on timeout, got %v", err)
	}
}

func TestRemoteBreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tr, _ := NewRemoteTranslator(RemoteConfig{URL: server.URL})
	for i := 0; i < 5; i++ {
		tr.Translate(context.Background(), "hello", "hi")
	}

	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("Expected breaker to stop calls after 3 failures, got %d requests", n)
	}
}

func TestRemoteEnglishShortCircuits(t *testing.T) {
	tr, _ := NewRemoteTranslator(RemoteConfig{URL: "http://127.0.0.1:1/translate"})
	got, err := tr.Translate(context.Background(), "hello", "en")
	if err != nil || got != "hello" {
		t.Errorf("Expected passthrough for English, got %q, %v", got, err)
	}
}

func TestNewRemoteTranslatorRequiresURL(t *testing.T) {
	if _, err := NewRemoteTranslator(RemoteConfig{}); err == nil {
		t.Error("Expected error for empty URL")
	}
}
