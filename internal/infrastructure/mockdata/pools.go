package mockdata

var (
	firstNames = []string{
		"Ana", "Bruno", "Carla", "Diego", "Elena", "Felix", "Grace", "Hugo", "Irene", "Jonas",
		"Karin", "Liam", "Maya", "Noah", "Olga", "Pedro", "Quinn", "Rosa", "Sven", "Tara",
	}
	lastNames = []string{
		"Almeida", "Berg", "Costa", "Dubois", "Eriksen", "Fischer", "Garcia", "Hansen", "Ito", "Jensen",
		"Kowalski", "Lopez", "Moreau", "Nakamura", "Oliveira", "Petrov", "Rossi", "Schmidt", "Tanaka", "Weber",
	}
	companyPrefixes = []string{
		"Blue", "North", "Bright", "Iron", "Silver", "Green", "Rapid", "Summit", "Atlas", "Nova",
	}
	companySuffixes = []string{
		"Logistics", "Analytics", "Foods", "Systems", "Health", "Energy", "Retail", "Labs", "Media", "Capital",
	}
	industries = []string{
		"Technology", "Healthcare", "Finance", "Retail", "Manufacturing", "Education", "Energy", "Logistics",
	}
	cities = []struct{ City, State, Country string }{
		{"Lisbon", "Lisboa", "Portugal"},
		{"Berlin", "Berlin", "Germany"},
		{"Austin", "TX", "USA"},
		{"Toronto", "ON", "Canada"},
		{"Osaka", "Osaka", "Japan"},
		{"Lyon", "Auvergne-Rhone-Alpes", "France"},
		{"Denver", "CO", "USA"},
		{"Milan", "Lombardy", "Italy"},
	}
	streets = []string{"Main St", "Harbor Rd", "Market Ave", "Station Sq", "Park Ln", "River Walk"}
	owners  = []string{"ana.sales", "bruno.sales", "carla.am", "diego.am", "elena.bd"}
	tags    = []string{"vip", "partner", "newsletter", "renewal", "at-risk", "upsell", "referral"}
	titles  = []string{"CEO", "CTO", "Head of Operations", "Procurement Manager", "IT Director", "Founder"}

	dealNames = []string{
		"Annual license", "Platform migration", "Support renewal", "Expansion seats", "Pilot project", "Consulting package",
	}
	activitySubjects = map[string][]string{
		"call":    {"Discovery call", "Follow-up call", "Pricing call"},
		"email":   {"Send proposal", "Share case study", "Contract follow-up"},
		"meeting": {"Product demo", "Quarterly review", "Kick-off meeting"},
		"task":    {"Prepare quote", "Update CRM notes", "Check references"},
		"note":    {"Budget confirmed", "Decision maker identified", "Competitor in play"},
	}
)
