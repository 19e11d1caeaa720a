package taxonomy

// DefaultVersion identifies the built-in catalog in logs and submissions.
const DefaultVersion = "2024.2"

// Default returns a fresh copy of the built-in catalog, already prepared.
func Default() *Catalog {
	c := &Catalog{
		Version:          DefaultVersion,
		GeneralCategory:  "General",
		OtherSubCategory: "Other",
		Categories:       defaultCategories(),
		Centers:          defaultCenters(),
	}
	if err := c.Prepare(); err != nil {
		panic(err)
	}
	return c
}

func defaultCategories() []Category {
	return []Category{
		{
			Name:     "Engine",
			Priority: 10,
			Keywords: []string{
				"engine", "injan", "इंजन", "start", "starting", "not starting", "start nahi", "chalu nahi",
				"चालू नहीं", "स्टार्ट", "smoke", "dhuan", "धुआं", "overheat", "garam", "गरम", "silencer", "diesel",
			},
			SubCategories: []SubCategory{
				{Name: "Start Problem", Keywords: []string{"not starting", "start nahi", "start nahin", "chalu nahi", "starting problem", "स्टार्ट नहीं", "चालू नहीं"}},
				{Name: "Overheating", Keywords: []string{"overheat", "overheating", "garam", "heat", "temperature", "गरम"}},
				{Name: "Smoke", Keywords: []string{"smoke", "dhuan", "dhua", "धुआं", "धुआँ"}},
				{Name: "Oil Leakage", Keywords: []string{"oil leak", "leak", "tel nikal", "mobil"}},
				{Name: "Abnormal Noise", Keywords: []string{"noise", "awaaz", "aawaz", "आवाज"}},
				{Name: "Power Loss", Keywords: []string{"pickup", "power", "dum nahi", "taakat"}},
			},
		},
		{
			Name:     "Braking",
			Priority: 9,
			Keywords: []string{"brake", "braking", "ब्रेक", "brek"},
			SubCategories: []SubCategory{
				{Name: "Weak Braking", Keywords: []string{"weak", "brake weak", "weak brake", "kamzor", "कमजोर", "halka", "soft"}},
				{Name: "Brake Failure", Keywords: []string{"fail", "failure", "nahi lag", "not working", "kaam nahi", "काम नहीं"}},
				{Name: "Brake Noise", Keywords: []string{"noise", "awaaz", "आवाज", "squeal"}},
			},
		},
		{
			Name:     "Hydraulic",
			Priority: 8,
			Keywords: []string{"hydraulic", "हाइड्रोलिक", "cylinder", "pump", "boom", "bucket", "hose", "pipe", "jack"},
			SubCategories: []SubCategory{
				{Name: "Oil Leakage", Keywords: []string{"leak", "leakage", "tapak", "oil", "tel"}},
				{Name: "Slow Operation", Keywords: []string{"slow", "dheere", "dheema", "dhima"}},
				{Name: "Cylinder Problem", Keywords: []string{"cylinder", "seal"}},
				{Name: "Pump Problem", Keywords: []string{"pump"}},
			},
		},
		{
			Name:     "Electrical",
			Priority: 7,
			Keywords: []string{"battery", "बैटरी", "wiring", "wire", "light", "bijli", "self", "starter", "alternator", "fuse", "horn"},
			SubCategories: []SubCategory{
				{Name: "Battery", Keywords: []string{"battery", "charge", "charging", "बैटरी"}},
				{Name: "Self Starter", Keywords: []string{"self", "starter"}},
				{Name: "Wiring", Keywords: []string{"wire", "wiring", "short"}},
				{Name: "Lights", Keywords: []string{"light", "lamp", "bulb"}},
			},
		},
		{
			Name:     "Transmission",
			Priority: 6,
			Keywords: []string{"gear", "गियर", "clutch", "क्लच", "transmission", "gearbox", "reverse", "forward"},
			SubCategories: []SubCategory{
				{Name: "Gear Shifting", Keywords: []string{"gear", "shift", "lag nahi", "गियर"}},
				{Name: "Clutch", Keywords: []string{"clutch", "क्लच"}},
				{Name: "Reverse Forward", Keywords: []string{"reverse", "forward"}},
			},
		},
		{
			Name:     "Tyre",
			Priority: 5,
			Keywords: []string{"tyre", "tire", "टायर", "wheel", "pahiya", "puncture", "पंक्चर"},
			SubCategories: []SubCategory{
				{Name: "Puncture", Keywords: []string{"puncture", "pankchar", "पंक्चर"}},
				{Name: "Tyre Wear", Keywords: []string{"ghis", "worn", "wear"}},
			},
		},
		{
			Name:     "Cabin",
			Priority: 4,
			Keywords: []string{"cabin", "seat", "glass", "sheesha", "शीशा", "door", "wiper", "air conditioner"},
			SubCategories: []SubCategory{
				{Name: "Air Conditioner", Keywords: []string{"air conditioner", "cooling", "thanda"}},
				{Name: "Glass", Keywords: []string{"glass", "sheesha", "शीशा"}},
				{Name: "Seat Door", Keywords: []string{"seat", "door"}},
			},
		},
		{
			Name:     "Service",
			Priority: 3,
			Keywords: []string{"service", "servicing", "सर्विस", "oil change", "filter", "periodic"},
			SubCategories: []SubCategory{
				{Name: "Periodic Service", Keywords: []string{"service", "servicing", "periodic", "सर्विस"}},
				{Name: "Filter Change", Keywords: []string{"filter"}},
				{Name: "Oil Change", Keywords: []string{"oil change"}},
			},
		},
		{
			Name:     "General",
			Priority: 0,
			Keywords: []string{"problem", "issue", "kharab", "खराब", "dikkat", "दिक्कत", "complaint", "shikayat", "शिकायत", "repair", "theek nahi"},
		},
	}
}

func defaultCenters() []ServiceCenter {
	return []ServiceCenter{
		{Name: "Jaipur", Aliases: []string{"जयपुर"}, Branch: "RJ01", Outlet: "JPR-01", CityCode: "JPR", Lat: 26.9124, Lng: 75.7873, Address: "Plot 12, VKI Area Road No. 5, Jaipur 302013"},
		{Name: "Jaisalmer", Aliases: []string{"जैसलमेर"}, Branch: "RJ01", Outlet: "JSM-01", CityCode: "JSM", Lat: 26.9157, Lng: 70.9083, Address: "Barmer Road, Near RIICO, Jaisalmer 345001"},
		{Name: "Jodhpur", Aliases: []string{"जोधपुर"}, Branch: "RJ02", Outlet: "JDH-01", CityCode: "JDH", Lat: 26.2389, Lng: 73.0243, Address: "Basni Phase 2, Jodhpur 342005"},
		{Name: "Udaipur", Aliases: []string{"उदयपुर"}, Branch: "RJ03", Outlet: "UDR-01", CityCode: "UDR", Lat: 24.5854, Lng: 73.7125, Address: "Madri Industrial Area, Udaipur 313003"},
		{Name: "Ajmer", Aliases: []string{"अजमेर"}, Branch: "RJ01", Outlet: "AJM-01", CityCode: "AJM", Lat: 26.4499, Lng: 74.6399, Address: "Beawar Road, Ajmer 305001"},
		{Name: "Kota", Aliases: []string{"कोटा"}, Branch: "RJ04", Outlet: "KTA-01", CityCode: "KTA", Lat: 25.2138, Lng: 75.8648, Address: "Jhalawar Road, Kota 324005"},
		{Name: "Bikaner", Aliases: []string{"बीकानेर"}, Branch: "RJ02", Outlet: "BKN-01", CityCode: "BKN", Lat: 28.0229, Lng: 73.3119, Address: "Rani Bazar Industrial Area, Bikaner 334001"},
		{Name: "Bharatpur", Aliases: []string{"भरतपुर"}, Branch: "RJ05", Outlet: "BTP-01", CityCode: "BTP", Lat: 27.2152, Lng: 77.5030, Address: "Agra Road, Bharatpur 321001"},
		{Name: "Alwar", Aliases: []string{"अलवर"}, Branch: "RJ05", Outlet: "ALW-01", CityCode: "ALW", Lat: 27.5530, Lng: 76.6346, Address: "MIA Extension, Alwar 301030"},
		{Name: "Bhilwara", Aliases: []string{"भीलवाड़ा"}, Branch: "RJ03", Outlet: "BHL-01", CityCode: "BHL", Lat: 25.3407, Lng: 74.6313, Address: "Pur Road, Bhilwara 311001"},
		{Name: "Sikar", Aliases: []string{"सीकर"}, Branch: "RJ01", Outlet: "SKR-01", CityCode: "SKR", Lat: 27.6094, Lng: 75.1399, Address: "Jaipur Road, Sikar 332001"},
		{Name: "Pali", Aliases: []string{"पाली"}, Branch: "RJ02", Outlet: "PLI-01", CityCode: "PLI", Lat: 25.7711, Lng: 73.3234, Address: "Mandia Road, Pali 306401"},
		{Name: "Sri Ganganagar", Aliases: []string{"ganganagar", "श्रीगंगानगर", "गंगानगर"}, Branch: "RJ02", Outlet: "SGN-01", CityCode: "SGN", Lat: 29.9038, Lng: 73.8772, Address: "Hanumangarh Road, Sri Ganganagar 335001"},
		{Name: "Chittorgarh", Aliases: []string{"chittor", "चित्तौड़गढ़"}, Branch: "RJ03", Outlet: "CTG-01", CityCode: "CTG", Lat: 24.8887, Lng: 74.6269, Address: "Udaipur Road, Chittorgarh 312001"},
	}
}
