package models

// Requests for the dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type EvaluateRequest struct {
	// Emphasis optionally tilts one horizon's market weight (+0.1, renormalized).
	Emphasis  string `query:"emphasis" json:"emphasis" default:"balanced" validate:"oneof=balanced short medium long"`
	Days      int    `query:"days" json:"days" default:"90" validate:"gte=45,lte=365"`
	VolWindow int    `query:"vol_window" json:"vol_window" default:"30" validate:"gte=14,lte=60"`
}

type ExportRequest struct {
	Emphasis  string `query:"emphasis" json:"emphasis" default:"balanced" validate:"oneof=balanced short medium long"`
	Days      int    `query:"days" json:"days" default:"90" validate:"gte=45,lte=365"`
	VolWindow int    `query:"vol_window" json:"vol_window" default:"30" validate:"gte=14,lte=60"`
}
