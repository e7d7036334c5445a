package i18n

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
)

// RemoteConfig configures a LibreTranslate-compatible endpoint
type RemoteConfig struct {
	URL       string
	APIKey    string
	Timeout   time.Duration
	CacheSize int
}

type cacheKey struct {
	lang string
	text string
}

// RemoteTranslator posts text to a LibreTranslate-compatible /translate
// endpoint. Results are cached and calls go through a circuit breaker so a
// dead endpoint costs nothing after it trips.
type RemoteTranslator struct {
	url    string
	apiKey string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[string]
	cache  *lru.Cache[cacheKey, string]
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewRemoteTranslator creates a translator for cfg
func NewRemoteTranslator(cfg RemoteConfig) (*RemoteTranslator, error) {
	if cfg.URL == "" {
		return nil, errors.New("translation URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}

	cache, err := lru.New[cacheKey, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation cache: %w", err)
	}

	metrics.TranslationBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "libretranslate",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Translator circuit breaker state change")
			metrics.TranslationBreakerState.Set(stateToFloat(to))
		},
	})

	return &RemoteTranslator{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
		cache:  cache,
	}, nil
}

// Translate returns text in target. Any failure, including an open breaker,
// is reported as ErrTranslationUnavailable.
func (t *RemoteTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if target == Source || strings.TrimSpace(text) == "" {
		return text, nil
	}

	key := cacheKey{lang: target, text: text}
	if v, ok := t.cache.Get(key); ok {
		return v, nil
	}

	translated, err := t.cb.Execute(func() (string, error) {
		return t.post(ctx, text, target)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationUnavailable, err)
	}

	t.cache.Add(key, translated)
	return translated, nil
}

func (t *RemoteTranslator) post(ctx context.Context, text, target string) (string, error) {
	form := url.Values{
		"q":      {text},
		"source": {Source},
		"target": {target},
		"format": {"text"},
	}
	if t.apiKey != "" {
		form.Set("api_key", t.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("translate returned status %d", resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode translation: %w", err)
	}
	if out.TranslatedText == "" {
		return "", errors.New("empty translatedText")
	}
	return out.TranslatedText, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
