package domain

// Stage1Record is the seller-defined specification set produced by the
// Stage 1 extractor: specs grouped by sub-category, each sub-category
// carrying primary/secondary/tertiary buckets.
type Stage1Record struct {
	Category      string        `json:"category"`
	SubCategories []SubCategory `json:"sub_categories"`
}

// SubCategory groups Stage 1 specs into tier buckets.
type SubCategory struct {
	Name      string       `json:"name"`
	Primary   []Stage1Spec `json:"primary"`
	Secondary []Stage1Spec `json:"secondary"`
	Tertiary  []Stage1Spec `json:"tertiary"`
}

// Stage1Spec is a single seller-authored specification.
type Stage1Spec struct {
	SpecName  string    `json:"spec_name"`
	Options   []string  `json:"options"`
	InputType InputType `json:"input_type,omitempty"`
}

// Stage2Record is the buyer-facing option set extracted from marketplace
// pages: one highest-priority config spec, up to three secondary key specs,
// and optional pre-selected buyer specs.
type Stage2Record struct {
	Config *Stage2Spec  `json:"config,omitempty"`
	Keys   []Stage2Spec `json:"keys,omitempty"`
	Buyers []Stage2Spec `json:"buyers,omitempty"`
}

// Stage2Spec is a single buyer-observed specification.
type Stage2Spec struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// IsEmpty reports whether the record carries no specifications at all.
func (r *Stage1Record) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, sc := range r.SubCategories {
		if len(sc.Primary) > 0 || len(sc.Secondary) > 0 || len(sc.Tertiary) > 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the record carries no specifications at all.
func (r *Stage2Record) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Config == nil && len(r.Keys) == 0 && len(r.Buyers) == 0
}
