package catalog

// The lists below must match, in content and order, the category columns the
// yield regressor was trained against. Do not sort them.

var stateLabels = []string{
	"Andaman and Nicobar Islands", "Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chandigarh", "Chhattisgarh",
	"Dadra and Nagar Haveli", "Goa", "Gujarat", "Haryana", "Himachal Pradesh",
	"Jammu and Kashmir", "Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra",
	"Manipur", "Meghalaya", "Mizoram", "Nagaland", "Odisha", "Puducherry", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh",
	"Uttarakhand", "West Bengal",
}

var cropLabels = []string{
	"Arecanut", "Barley", "Banana", "Blackpepper", "Brinjal", "Cabbage", "Cardamom", "Cashewnuts", "Cauliflower",
	"Coriander", "Cotton", "Garlic", "Grapes", "Horsegram", "Jowar", "Jute", "Ladyfinger", "Maize",
	"Mango", "Moong", "Onion", "Orange", "Papaya", "Pineapple", "Potato", "Rapeseed", "Ragi", "Rice",
	"Sesamum", "Soyabean", "Sunflower", "Sweetpotato", "Tapioca", "Tomato", "Turmeric", "Wheat",
}

var seasonLabels = []string{"Kharif", "Rabi", "Summer", "Whole Year"}

var (
	// States is the state registry (33 entries, reference "Andaman and Nicobar Islands")
	States = MustRegistry("state", stateLabels)

	// Crops is the crop registry (36 entries, reference "Arecanut")
	Crops = MustRegistry("crop", cropLabels)

	// Seasons is the season registry (4 entries, reference "Kharif")
	Seasons = MustRegistry("season", seasonLabels)
)
