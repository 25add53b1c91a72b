// Package recommend serves the rule-based scheme and resource cards shown
// on the platform home screen. These are curated, not model-generated, so
// they render instantly and without provider cost.
package recommend

// Card is one recommendation tile.
type Card struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var byCommunity = map[string][]Card{
	"farmer": {
		{
			Icon:        "🌾",
			Title:       "PM-KISAN Scheme",
			Description: "Direct income support of ₹6000 per year for farmers",
			Category:    "Government Scheme",
		},
		{
			Icon:        "🚜",
			Title:       "e-NAM Market Access",
			Description: "Connect your farm produce to national markets for better pricing",
			Category:    "Market Access",
		},
		{
			Icon:        "📚",
			Title:       "Modern Farming Techniques",
			Description: "Learn about sustainable and efficient farming methods",
			Category:    "Education",
		},
	},
	"student": {
		{
			Icon:        "🎓",
			Title:       "Scholarship Programs",
			Description: "Explore various scholarship opportunities for students",
			Category:    "Education",
		},
		{
			Icon:        "💼",
			Title:       "Skill Development Courses",
			Description: "Free courses to enhance your employability",
			Category:    "Learning",
		},
	},
	"business": {
		{
			Icon:        "💰",
			Title:       "MUDRA Loan Scheme",
			Description: "Loans up to ₹10 lakhs for small businesses",
			Category:    "Government Scheme",
		},
		{
			Icon:        "📈",
			Title:       "ONDC Marketplace",
			Description: "Sell your products digitally across India through ONDC",
			Category:    "Market Access",
		},
		{
			Icon:        "📊",
			Title:       "Business Management Course",
			Description: "Learn essential business and financial management skills",
			Category:    "Learning",
		},
	},
}

var general = []Card{
	{
		Icon:        "🏥",
		Title:       "Ayushman Bharat",
		Description: "Free health insurance coverage up to ₹5 lakhs",
		Category:    "Healthcare",
	},
	{
		Icon:        "💻",
		Title:       "Digital Literacy Program",
		Description: "Learn basic computer and internet skills",
		Category:    "Education",
	},
}

// ForCommunity returns the cards for a community type, with a general set
// for unrecognized types.
func ForCommunity(communityType string) []Card {
	if cards, ok := byCommunity[communityType]; ok {
		return cards
	}
	return general
}
