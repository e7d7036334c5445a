package models

import (
	"time"

	"github.com/fasalvikas/fasal-vikas/internal/features"
)

// YieldRequest is the yield prediction form. Every field is required and a
// zero value counts as not entered.
type YieldRequest struct {
	State       string  `json:"state" validate:"required"`
	Crop        string  `json:"crop" validate:"required"`
	Season      string  `json:"season" validate:"required"`
	PH          float64 `json:"ph" validate:"required,gte=0,lte=14"`
	Rainfall    float64 `json:"rainfall" validate:"required,gte=0"`
	Temperature float64 `json:"temperature" validate:"required,gte=0"`
	Area        float64 `json:"area" validate:"required,gte=0"`
	Production  float64 `json:"production" validate:"required,gte=0"`
}

// FeatureInput converts the request for the encoder
func (r YieldRequest) FeatureInput() features.YieldInput {
	return features.YieldInput{
		State:       r.State,
		Crop:        r.Crop,
		Season:      r.Season,
		PH:          r.PH,
		Rainfall:    r.Rainfall,
		Temperature: r.Temperature,
		Area:        r.Area,
		Production:  r.Production,
	}
}

// YieldResponse contains the prediction and advice, localized
type YieldResponse struct {
	ID                    string   `json:"id,omitempty"`
	Language              string   `json:"language"`
	PredictedYield        float64  `json:"predicted_yield"`
	PredictedYieldDisplay string   `json:"predicted_yield_display"`
	Unit                  string   `json:"unit"`
	Message               string   `json:"message"`
	RecommendationsTitle  string   `json:"recommendations_title"`
	Recommendations       []string `json:"recommendations"`
	RecommendationIDs     []string `json:"recommendation_ids"`
}

// CropRequest is the crop recommendation form. N, P and K must be entered.
type CropRequest struct {
	N           float64 `json:"N" validate:"required,gte=0"`
	P           float64 `json:"P" validate:"required,gte=0"`
	K           float64 `json:"K" validate:"required,gte=0"`
	PH          float64 `json:"ph" validate:"gte=0,lte=14"`
	Temperature float64 `json:"temperature" validate:"gte=0"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	Rainfall    float64 `json:"rainfall" validate:"gte=0"`
}

// Vector returns the classifier input in training order
func (r CropRequest) Vector() []float64 {
	return []float64{r.N, r.P, r.K, r.PH, r.Temperature, r.Humidity, r.Rainfall}
}

// CropResponse contains the recommended crop
type CropResponse struct {
	Crop     string `json:"crop"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

// RegistriesResponse lists the accepted categories
type RegistriesResponse struct {
	States    []string          `json:"states"`
	Crops     []string          `json:"crops"`
	Seasons   []string          `json:"seasons"`
	Reference map[string]string `json:"reference"`
}

// InfoResponse describes the running service
type InfoResponse struct {
	Version       string                 `json:"version"`
	EncoderWidth  int                    `json:"encoder_width"`
	YieldModel    map[string]interface{} `json:"yield_model"`
	CropModel     map[string]interface{} `json:"crop_model,omitempty"`
	Features      map[string]bool        `json:"features"`
	History       bool                   `json:"history"`
	LocaleEntries map[string]int         `json:"locale_entries"`
}

// Prediction is a stored yield prediction
type Prediction struct {
	ID             string    `json:"id" db:"id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	State          string    `json:"state" db:"state"`
	Crop           string    `json:"crop" db:"crop"`
	Season         string    `json:"season" db:"season"`
	PH             float64   `json:"ph" db:"ph"`
	Rainfall       float64   `json:"rainfall" db:"rainfall"`
	Temperature    float64   `json:"temperature" db:"temperature"`
	Area           float64   `json:"area" db:"area"`
	Production     float64   `json:"production" db:"production"`
	PredictedYield float64   `json:"predicted_yield" db:"predicted_yield"`
	Language       string    `json:"language" db:"language"`
}

// ErrorBody is the JSON error envelope
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
