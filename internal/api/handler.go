package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/fasalvikas/fasal-vikas/internal/catalog"
	"github.com/fasalvikas/fasal-vikas/internal/config"
	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/history"
	"github.com/fasalvikas/fasal-vikas/internal/i18n"
	"github.com/fasalvikas/fasal-vikas/internal/inference"
	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/models"
)

// maxBodyBytes bounds request bodies; the forms are tiny
const maxBodyBytes = 64 << 10

// CropClassifier recommends a crop from soil and weather readings
type CropClassifier interface {
	InputWidth() int
	Classify(x []float64) (string, error)
}

// HistoryStore records and lists predictions
type HistoryStore interface {
	Record(ctx context.Context, p models.Prediction) (models.Prediction, error)
	Recent(ctx context.Context, limit int) ([]models.Prediction, error)
	Get(ctx context.Context, id string) (models.Prediction, error)
}

// describer is implemented by models that can summarize themselves
type describer interface {
	GetConfig() map[string]interface{}
}

// Deps are the collaborators a Handler serves from. Crop and History may
// be nil.
type Deps struct {
	Encoder   *features.Encoder
	Yield     inference.Regressor
	Crop      CropClassifier
	Localizer *i18n.Localizer
	History   HistoryStore
}

// Handler provides HTTP API endpoints
type Handler struct {
	cfg        config.Config
	encoder    *features.Encoder
	yieldModel inference.Regressor
	yield      *inference.Dispatcher
	crop       CropClassifier
	localizer  *i18n.Localizer
	history    HistoryStore
}

// NewHandler creates a new API handler. It fails if the yield model was
// trained on a different feature width than the encoder produces.
func NewHandler(cfg config.Config, deps Deps) (*Handler, error) {
	if deps.Encoder == nil {
		deps.Encoder = features.DefaultEncoder()
	}
	if deps.Yield == nil {
		return nil, errors.New("yield model is required")
	}
	if deps.Localizer == nil {
		return nil, errors.New("localizer is required")
	}

	dispatcher, err := inference.NewYieldDispatcher(deps.Yield, deps.Encoder)
	if err != nil {
		return nil, fmt.Errorf("yield model does not match encoder: %w", err)
	}

	return &Handler{
		cfg:        cfg,
		encoder:    deps.Encoder,
		yieldModel: deps.Yield,
		yield:      dispatcher,
		crop:       deps.Crop,
		localizer:  deps.Localizer,
		history:    deps.History,
	}, nil
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// Reference data
	r.HandleFunc("/registries", h.handleRegistries).Methods("GET")
	r.HandleFunc("/languages", h.handleLanguages).Methods("GET")

	// Predictions
	r.HandleFunc("/predict/yield", h.handlePredictYield).Methods("POST")
	r.HandleFunc("/recommend/crop", h.handleRecommendCrop).Methods("POST")

	// History
	r.HandleFunc("/predictions", h.handleListPredictions).Methods("GET")
	r.HandleFunc("/predictions/{id}", h.handleGetPrediction).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn().Err(err).Msg("Error encoding response")
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, models.ErrorBody{
		Error: models.ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// decodeBody reads a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	return json.Unmarshal(body, v)
}

// language picks the response language for r
func (h *Handler) language(r *http.Request) string {
	query := r.URL.Query().Get("lang")
	header := r.Header.Get("Accept-Language")
	if query == "" && header == "" && i18n.Supported(h.cfg.I18n.Default) {
		return h.cfg.I18n.Default
	}
	return i18n.ResolveLanguage(query, header)
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := models.InfoResponse{
		Version:      h.cfg.Version,
		EncoderWidth: h.encoder.Width(),
		YieldModel:   map[string]interface{}{"input_width": h.yield.ExpectedWidth()},
		Features: map[string]bool{
			"crop_recommendation": h.cropEnabled(),
			"remote_translation":  h.cfg.I18n.Remote.Enabled,
		},
		History:       h.history != nil,
		LocaleEntries: h.localizer.Coverage(),
	}
	if d, ok := h.yieldModel.(describer); ok {
		info.YieldModel = d.GetConfig()
	}
	if d, ok := h.crop.(describer); ok {
		info.CropModel = d.GetConfig()
	}
	respondJSON(w, http.StatusOK, info)
}

// handleRegistries returns the accepted states, crops and seasons
func (h *Handler) handleRegistries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.RegistriesResponse{
		States:  catalog.States.Labels(),
		Crops:   catalog.Crops.Labels(),
		Seasons: catalog.Seasons.Labels(),
		Reference: map[string]string{
			"state":  catalog.States.Reference(),
			"crop":   catalog.Crops.Reference(),
			"season": catalog.Seasons.Reference(),
		},
	})
}

// handleLanguages returns the supported languages
func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"default":   h.cfg.I18n.Default,
		"languages": i18n.Languages(),
	})
}

// handleListPredictions returns recent predictions, newest first
func (h *Handler) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "HISTORY_DISABLED", "prediction history is disabled", nil)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > history.MaxLimit {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT",
				fmt.Sprintf("limit must be between 1 and %d", history.MaxLimit), nil)
			return
		}
		limit = n
	}

	preds, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list predictions")
		respondError(w, http.StatusInternalServerError, "HISTORY_ERROR", "failed to list predictions", nil)
		return
	}
	respondJSON(w, http.StatusOK, preds)
}

// handleGetPrediction returns one stored prediction
func (h *Handler) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "HISTORY_DISABLED", "prediction history is disabled", nil)
		return
	}

	id := mux.Vars(r)["id"]
	pred, err := h.history.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("id", id).Msg("Failed to get prediction")
		respondError(w, http.StatusInternalServerError, "HISTORY_ERROR", "failed to get prediction", nil)
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

func (h *Handler) cropEnabled() bool {
	return h.cfg.Features.CropRecommendation && h.crop != nil
}
