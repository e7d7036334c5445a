package advisory

// cropRules maps a lower-cased crop name to its rule table. Crops not listed
// get no crop-specific advice.
var cropRules = map[string]func(in Input, season string) []Message{
	"rice":     riceRules,
	"wheat":    wheatRules,
	"cotton":   cottonRules,
	"soyabean": soyabeanRules,
}

func riceRules(in Input, season string) []Message {
	var recs []Message
	if season == "kharif" && in.Rainfall < 60 {
		recs = append(recs, msg(RiceKharifRain))
	}
	if in.PH < 6.0 || in.PH > 7.5 {
		recs = append(recs, msg(RicePH, in.PH))
	}
	return append(recs, msg(RiceFertilizer), msg(RicePests), msg(RiceHarvest))
}

func wheatRules(in Input, season string) []Message {
	var recs []Message
	if season == "rabi" && in.Temperature < 15 {
		recs = append(recs, msg(WheatRabiCold))
	}
	if in.PH < 6.0 || in.PH > 7.0 {
		recs = append(recs, msg(WheatPH, in.PH))
	}
	return append(recs, msg(WheatIrrigation), msg(WheatNutrients), msg(WheatPests), msg(WheatHarvest))
}

func cottonRules(in Input, season string) []Message {
	var recs []Message
	if in.Temperature < 20 {
		recs = append(recs, msg(CottonCold, in.Temperature))
	}
	if season == "kharif" {
		recs = append(recs, msg(CottonKharif))
	}
	return append(recs, msg(CottonNitrogen), msg(CottonIrrigate), msg(CottonHarvest))
}

func soyabeanRules(in Input, season string) []Message {
	var recs []Message
	if in.Rainfall < 40 {
		recs = append(recs, msg(SoyaRainfall, in.Rainfall))
	}
	if season == "kharif" {
		recs = append(recs, msg(SoyaKharif))
	}
	return append(recs, msg(SoyaFertilizer), msg(SoyaPests), msg(SoyaHarvest))
}
