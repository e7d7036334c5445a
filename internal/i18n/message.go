package i18n

import "fmt"

// Message is a localizable string. Format is the English template and Args
// are applied to it or to a localized template that uses the same verbs.
type Message struct {
	ID     string `json:"id"`
	Format string `json:"-"`
	Args   []any  `json:"-"`
}

// Text renders the message in English
func (m Message) Text() string {
	return fmt.Sprintf(m.Format, m.Args...)
}

// Interface strings that are not advice
const (
	MsgAppName         = "ui.app_name"
	MsgPredictedYield  = "ui.predicted_yield"
	MsgRecsTitle       = "ui.recommendations_title"
	MsgMissingInput    = "ui.missing_input"
	MsgMissingNPK      = "ui.missing_npk"
	MsgShapeMismatch   = "ui.shape_mismatch"
	MsgUnknownCategory = "ui.unknown_category"
	MsgRecommendedCrop = "ui.recommended_crop"
	MsgFeatureDisabled = "ui.feature_disabled"
)

var uiTemplates = map[string]string{
	MsgAppName:         "Fasal Vikas",
	MsgPredictedYield:  "The predicted yield for the selected inputs is: %s tons/hectare",
	MsgRecsTitle:       "Recommendations to Improve Yield",
	MsgMissingInput:    "Please enter all required values",
	MsgMissingNPK:      "Please enter values for Nitrogen (N), Phosphorus (P), and Potassium (K)",
	MsgShapeMismatch:   "Feature shape mismatch, expected: %d, got: %d",
	MsgUnknownCategory: "Unknown %s: %s",
	MsgRecommendedCrop: "Recommended Crop: %s",
	MsgFeatureDisabled: "Crop recommendation is currently unavailable",
}

// UI builds an interface message. Unknown IDs render as the ID itself.
func UI(id string, args ...any) Message {
	tmpl, ok := uiTemplates[id]
	if !ok {
		tmpl = id
	}
	return Message{ID: id, Format: tmpl, Args: args}
}
