package domain

// Tier classifies how important a specification is for pricing and comparison.
// Only Primary and Secondary specs participate in reconciliation.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierTertiary  Tier = "tertiary"
)

// InputType describes how a buyer answers a specification question.
// It is carried through unchanged and never consulted by the matchers.
type InputType string

const (
	InputSingleSelect InputType = "single_select"
	InputMultiSelect  InputType = "multi_select"
)

// Spec represents one named attribute of a product category, e.g.
// "Thickness (mm)" with options ["1mm", "2mm", "0.5mm to 6mm"].
// Option order is popularity/appearance order and matters for display,
// not for matching. Specs are immutable once handed to the engine.
type Spec struct {
	Name      string    `json:"spec_name"`
	Options   []string  `json:"options"`
	Tier      Tier      `json:"tier,omitempty"`
	InputType InputType `json:"input_type,omitempty"`
}

// CommonSpec is a specification judged to represent the same attribute in
// both the seller catalog (Stage 1) and buyer-observed data (Stage 2).
// Options may be empty: a matched pair with disjoint option vocabularies is
// still reported, flagged downstream as "no common options".
type CommonSpec struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
	Tier    Tier     `json:"tier"`
}

// BuyerISQ is a buyer-facing Important Selection Question: a curated common
// spec with a blended option list, capped for review-friendliness.
type BuyerISQ struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
	Tier    Tier     `json:"tier"`
}

// ReconcileResult is the engine's complete output for one category run.
// Both slices are always non-nil; empty means "no matches found".
type ReconcileResult struct {
	CommonSpecs []CommonSpec `json:"commonSpecs"`
	BuyerISQs   []BuyerISQ   `json:"buyerISQs"`
}
