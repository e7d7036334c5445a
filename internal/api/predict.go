package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fasalvikas/fasal-vikas/internal/advisory"
	"github.com/fasalvikas/fasal-vikas/internal/catalog"
	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/i18n"
	"github.com/fasalvikas/fasal-vikas/internal/inference"
	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
	"github.com/fasalvikas/fasal-vikas/internal/models"
	"github.com/fasalvikas/fasal-vikas/internal/validation"
)

// YieldUnit is the unit of every predicted yield
const YieldUnit = "tons/hectare"

// FormatYield renders a yield with two decimals for display. The raw value
// is never rounded. NaN and infinities cannot be held by a decimal and are
// printed as-is.
func FormatYield(y float64) string {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return strconv.FormatFloat(y, 'f', 2, 64)
	}
	return decimal.NewFromFloat(y).StringFixed(2)
}

// handlePredictYield encodes the form, runs the yield model and returns the
// prediction with localized advice.
func (h *Handler) handlePredictYield(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.language(r)

	var req models.YieldRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body: "+err.Error(), nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		if verr.Missing() {
			respondError(w, http.StatusBadRequest, "MISSING_INPUT",
				h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgMissingInput)), verr.MissingFields())
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", verr.Error(), verr.Fields)
		return
	}

	vec, err := h.encoder.Encode(req.FeatureInput())
	if err != nil {
		var uce *features.UnknownCategoryError
		if errors.As(err, &uce) {
			metrics.RecordPrediction("yield", metrics.OutcomeUnknownCategory, 0)
			respondError(w, http.StatusUnprocessableEntity, "UNKNOWN_CATEGORY",
				h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgUnknownCategory, uce.Field, uce.Value)),
				map[string]string{"field": uce.Field, "value": uce.Value})
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	predicted, err := h.yield.Predict(ctx, vec)
	if err != nil {
		var sme *inference.ShapeMismatchError
		if errors.As(err, &sme) {
			logging.Ctx(ctx).Error().Int("expected", sme.Expected).Int("got", sme.Got).Msg("Feature shape mismatch")
			respondError(w, http.StatusInternalServerError, "SHAPE_MISMATCH",
				h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgShapeMismatch, sme.Expected, sme.Got)), nil)
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("Yield prediction failed")
		respondError(w, http.StatusInternalServerError, "MODEL_ERROR", "yield prediction failed", nil)
		return
	}

	// Advice and history use the registry spelling of each category
	state, _ := catalog.States.Canonical(req.State)
	crop, _ := catalog.Crops.Canonical(req.Crop)
	season, _ := catalog.Seasons.Canonical(req.Season)

	advice := advisory.Generate(advisory.Input{
		Crop:           crop,
		Season:         season,
		Area:           req.Area,
		PH:             req.PH,
		Rainfall:       req.Rainfall,
		Temperature:    req.Temperature,
		Production:     req.Production,
		PredictedYield: predicted,
	})

	display := FormatYield(predicted)
	resp := models.YieldResponse{
		Language:              lang,
		PredictedYield:        predicted,
		PredictedYieldDisplay: display,
		Unit:                  YieldUnit,
		Message:               h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgPredictedYield, display)),
		RecommendationsTitle:  h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgRecsTitle)),
		Recommendations:       h.localizer.LocalizeAll(ctx, lang, advice),
		RecommendationIDs:     make([]string, len(advice)),
	}
	for i, m := range advice {
		resp.RecommendationIDs[i] = m.ID
	}

	if h.history != nil {
		rec, err := h.history.Record(ctx, models.Prediction{
			CreatedAt:      time.Now().UTC(),
			State:          state,
			Crop:           crop,
			Season:         season,
			PH:             req.PH,
			Rainfall:       req.Rainfall,
			Temperature:    req.Temperature,
			Area:           req.Area,
			Production:     req.Production,
			PredictedYield: predicted,
			Language:       lang,
		})
		if err != nil {
			metrics.HistoryWriteErrors.Inc()
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record prediction")
		} else {
			resp.ID = rec.ID
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleRecommendCrop classifies soil and weather readings into a crop.
// The endpoint answers 503 unless the feature is enabled.
func (h *Handler) handleRecommendCrop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.language(r)

	if !h.cropEnabled() {
		respondError(w, http.StatusServiceUnavailable, "FEATURE_DISABLED",
			h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgFeatureDisabled)), nil)
		return
	}

	var req models.CropRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body: "+err.Error(), nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		if verr.Missing() {
			respondError(w, http.StatusBadRequest, "MISSING_INPUT",
				h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgMissingNPK)), verr.MissingFields())
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", verr.Error(), verr.Fields)
		return
	}

	vec := req.Vector()
	if len(vec) != h.crop.InputWidth() {
		metrics.RecordPrediction("crop", metrics.OutcomeShapeMismatch, 0)
		respondError(w, http.StatusInternalServerError, "SHAPE_MISMATCH",
			h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgShapeMismatch, h.crop.InputWidth(), len(vec))), nil)
		return
	}

	start := time.Now()
	crop, err := h.crop.Classify(vec)
	if err != nil {
		metrics.RecordPrediction("crop", metrics.OutcomeModelError, 0)
		logging.Ctx(ctx).Error().Err(err).Msg("Crop classification failed")
		respondError(w, http.StatusInternalServerError, "MODEL_ERROR", "crop recommendation failed", nil)
		return
	}
	metrics.RecordPrediction("crop", metrics.OutcomeSuccess, time.Since(start))

	respondJSON(w, http.StatusOK, models.CropResponse{
		Crop:     crop,
		Message:  h.localizer.Localize(ctx, lang, i18n.UI(i18n.MsgRecommendedCrop, crop)),
		Language: lang,
	})
}
