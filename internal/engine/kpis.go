package engine

// KPI describes one metric the engine extracts for a college.
type KPI struct {
	Name     string
	Category string
	// Samples are canned values the simulated runner picks from. An empty
	// slice means the runner always reports the KPI as not found.
	Samples []string
}

// auditSchema is the fixed set of KPIs every audit covers, in report order.
var auditSchema = []KPI{
	{Name: "NIRF Overall Rank", Category: "Rankings", Samples: []string{"42", "87", "113"}},
	{Name: "NIRF Engineering Rank", Category: "Rankings", Samples: []string{"28", "55", "91"}},
	{Name: "NAAC Grade", Category: "Accreditation", Samples: []string{"A++", "A+", "A"}},
	{Name: "NBA Accredited Programs", Category: "Accreditation", Samples: []string{"8", "12", "5"}},
	{Name: "Student Faculty Ratio", Category: "Faculty", Samples: []string{"15:1", "18:1", "22:1"}},
	{Name: "Faculty with PhD", Category: "Faculty", Samples: []string{"68%", "74%", "81%"}},
	{Name: "Median Placement Package", Category: "Placements", Samples: []string{"6.5 LPA", "8.2 LPA", "12.0 LPA"}},
	{Name: "Placement Rate", Category: "Placements", Samples: []string{"82%", "91%", "76%"}},
	{Name: "Highest Package", Category: "Placements", Samples: []string{"44 LPA", "58 LPA", "1.2 Cr"}},
	{Name: "Research Publications", Category: "Research", Samples: []string{"1240", "860", "2100"}},
	{Name: "Patents Filed", Category: "Research", Samples: []string{"34", "12", "67"}},
	{Name: "Sponsored Research Funding", Category: "Research", Samples: []string{"18.4 Cr", "7.2 Cr", "31.0 Cr"}},
	{Name: "Total Student Enrollment", Category: "Academics", Samples: []string{"8400", "12600", "5200"}},
	{Name: "Programs Offered", Category: "Academics", Samples: []string{"42", "61", "27"}},
	{Name: "Graduation Rate", Category: "Academics", Samples: []string{"94%", "88%", "97%"}},
	{Name: "Campus Area", Category: "Infrastructure", Samples: []string{"250 acres", "110 acres", "625 acres"}},
	{Name: "Hostel Capacity", Category: "Infrastructure", Samples: []string{"4200", "6800", "2900"}},
	{Name: "Library Volumes", Category: "Infrastructure", Samples: []string{"185000", "320000", "96000"}},
	{Name: "International Collaborations", Category: "Outreach", Samples: []string{"14", "22", "6"}},
	{Name: "Alumni Network Size", Category: "Outreach", Samples: nil},
}

// Schema returns the KPI schema the engine audits against.
func Schema() []KPI {
	out := make([]KPI, len(auditSchema))
	copy(out, auditSchema)
	return out
}
