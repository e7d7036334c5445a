// Package advisory turns a yield prediction and its inputs into rule-based
// farming advice.
package advisory

import (
	"strings"

	"github.com/fasalvikas/fasal-vikas/internal/i18n"
)

// Message is one piece of advice, localizable by its ID
type Message = i18n.Message

// Input holds everything the rules look at
type Input struct {
	Crop           string
	Season         string
	Area           float64
	PH             float64
	Rainfall       float64
	Temperature    float64
	Production     float64
	PredictedYield float64
}

// Message IDs. Locale files are keyed by these.
const (
	AreaSmall = "area.small"
	AreaLarge = "area.large"

	RiceKharifRain  = "rice.kharif_rainfall"
	RicePH          = "rice.ph"
	RiceFertilizer  = "rice.fertilizer"
	RicePests       = "rice.pests"
	RiceHarvest     = "rice.harvest"
	WheatRabiCold   = "wheat.rabi_cold"
	WheatPH         = "wheat.ph"
	WheatIrrigation = "wheat.irrigation"
	WheatNutrients  = "wheat.micronutrients"
	WheatPests      = "wheat.pests"
	WheatHarvest    = "wheat.harvest"
	CottonCold      = "cotton.cold"
	CottonKharif    = "cotton.kharif_pests"
	CottonNitrogen  = "cotton.nitrogen"
	CottonIrrigate  = "cotton.irrigation"
	CottonHarvest   = "cotton.harvest"
	SoyaRainfall    = "soyabean.rainfall"
	SoyaKharif      = "soyabean.kharif_sowing"
	SoyaFertilizer  = "soyabean.fertilizer"
	SoyaPests       = "soyabean.pests"
	SoyaHarvest     = "soyabean.harvest"

	SummerHeat = "season.summer_heat"

	SoilAcidic   = "soil.acidic"
	SoilAlkaline = "soil.alkaline"

	YieldBelowAverage = "yield.below_average"
	YieldSoilTest     = "yield.soil_test"

	GeneralMonitor  = "general.monitor"
	GeneralRotation = "general.rotation"
	GeneralRecords  = "general.records"
)

var templates = map[string]string{
	AreaSmall: "Your cultivation area for %s is small (%.2f hectares). Use high-yielding seed varieties, optimize plant spacing, and apply organic manure to maximize output.",
	AreaLarge: "With a large area (%.2f hectares) for %s, mechanize sowing and harvesting, and use precision agriculture tools for efficient resource management.",

	RiceKharifRain:  "Rice in Kharif season needs at least 60 mm rainfall. Use alternate wetting and drying irrigation, and maintain proper bunds to conserve water.",
	RicePH:          "Rice grows best in soil pH between 6.0 and 7.5. Your pH is %.2f. Apply lime if pH is low, or gypsum if pH is high.",
	RiceFertilizer:  "Apply recommended doses of nitrogen, phosphorus, and potassium fertilizers at key growth stages. Use certified disease-free seeds.",
	RicePests:       "Monitor for blast and bacterial leaf blight. Use resistant varieties and follow integrated pest management.",
	RiceHarvest:     "Harvest at the right moisture content (20-24%%) to reduce post-harvest losses.",
	WheatRabiCold:   "Wheat in Rabi season prefers temperatures above 15°C. Use early sowing and select cold-tolerant varieties.",
	WheatPH:         "Wheat prefers soil pH between 6.0 and 7.0. Your pH is %.2f. Apply lime or sulfur as needed.",
	WheatIrrigation: "Ensure timely irrigation at crown root initiation and grain filling stages. Avoid waterlogging.",
	WheatNutrients:  "Apply balanced fertilizers and micronutrients, especially zinc and iron, for better grain quality.",
	WheatPests:      "Control rust and aphids using recommended fungicides and insecticides.",
	WheatHarvest:    "Harvest when grains are hard and straw is dry for maximum yield.",
	CottonCold:      "Cotton prefers warmer temperatures. Current temperature is %.1f°C. Delay sowing or use protective covers if possible.",
	CottonKharif:    "Monitor for bollworm and whitefly. Use pheromone traps and biocontrol agents.",
	CottonNitrogen:  "Apply nitrogen in split doses and ensure adequate potassium for boll development.",
	CottonIrrigate:  "Practice timely irrigation, especially during flowering and boll formation.",
	CottonHarvest:   "Harvest cotton when bolls are fully mature and open to avoid quality loss.",
	SoyaRainfall:    "Soyabean needs at least 40 mm rainfall. Current rainfall is %.1f mm. Use supplemental irrigation if needed.",
	SoyaKharif:      "Sow at the onset of monsoon for best results. Practice weed management during early growth.",
	SoyaFertilizer:  "Apply phosphorus and potassium fertilizers at sowing. Use rhizobium inoculation for better nitrogen fixation.",
	SoyaPests:       "Monitor for yellow mosaic virus and use resistant varieties.",
	SoyaHarvest:     "Harvest when pods turn yellow and seeds rattle inside for maximum yield.",

	SummerHeat: "High temperatures in Summer can stress %s. Use mulching, shade nets, and timely irrigation to reduce heat stress.",

	SoilAcidic:   "Very acidic soil detected. Apply lime and organic matter to improve pH and nutrient availability.",
	SoilAlkaline: "Alkaline soil detected. Apply gypsum and organic compost to lower pH and enhance crop growth.",

	YieldBelowAverage: "Your predicted yield (%.2f tons/hectare) is below your current average. Review fertilizer schedule, irrigation timing, and pest management for %s.",
	YieldSoilTest:     "Consider soil testing and consult local agricultural experts for customized advice.",

	GeneralMonitor:  "Regularly monitor your %s field for weeds and pests, especially during the %s season. Timely intervention can prevent yield loss.",
	GeneralRotation: "Follow crop rotation and intercropping to maintain soil fertility and reduce pest pressure.",
	GeneralRecords:  "Keep records of all farm activities and inputs to track what works best for your field.",
}

// Template returns the English template for id
func Template(id string) (string, bool) {
	t, ok := templates[id]
	return t, ok
}

// IDs returns every known message ID
func IDs() []string {
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	return ids
}

func msg(id string, args ...any) Message {
	return Message{ID: id, Format: templates[id], Args: args}
}

// Generate evaluates every rule group in order and returns the advice that
// fired. Groups are independent; several may contribute messages.
func Generate(in Input) []Message {
	var recs []Message

	if in.Area < 1 {
		recs = append(recs, msg(AreaSmall, in.Crop, in.Area))
	} else if in.Area > 10 {
		recs = append(recs, msg(AreaLarge, in.Area, in.Crop))
	}

	season := strings.ToLower(strings.TrimSpace(in.Season))
	if rules, ok := cropRules[strings.ToLower(strings.TrimSpace(in.Crop))]; ok {
		recs = append(recs, rules(in, season)...)
	}

	if season == "summer" && in.Temperature > 35 {
		recs = append(recs, msg(SummerHeat, in.Crop))
	}

	if in.PH < 5.5 {
		recs = append(recs, msg(SoilAcidic))
	} else if in.PH > 8.0 {
		recs = append(recs, msg(SoilAlkaline))
	}

	if in.Area > 0 && in.PredictedYield < in.Production/in.Area {
		recs = append(recs,
			msg(YieldBelowAverage, in.PredictedYield, in.Crop),
			msg(YieldSoilTest),
		)
	}

	recs = append(recs,
		msg(GeneralMonitor, in.Crop, in.Season),
		msg(GeneralRotation),
		msg(GeneralRecords),
	)

	return recs
}

// Texts renders msgs in English
func Texts(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text()
	}
	return out
}
