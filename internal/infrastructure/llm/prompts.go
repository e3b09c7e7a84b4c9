package llm

import (
	"fmt"
	"strings"
)

const stage1SystemPrompt = `You are a product specification analyst for an industrial B2B marketplace. You answer with a single JSON object and nothing else.`

const stage2SystemPrompt = `You are a marketplace analyst extracting the selection questions buyers actually answer when sourcing a product. You answer with a single JSON object and nothing else.`

// stage1UserPrompt asks for the seller-defined specification set of a
// category, bucketed by tier.
func stage1UserPrompt(category string) string {
	return fmt.Sprintf(`List the specifications sellers define for the product category %q.

Group them by sub-category. For each sub-category return three buckets by importance to pricing: "primary", "secondary" and "tertiary". Each specification has a "spec_name", an "options" array of strings ordered by popularity, and an "input_type" of either "single_select" or "multi_select".

Respond with JSON of this shape:
{"category": "...", "sub_categories": [{"name": "...", "primary": [{"spec_name": "...", "options": ["..."], "input_type": "single_select"}], "secondary": [], "tertiary": []}]}`, category)
}

// stage2UserPrompt asks for the buyer-facing option sets observed on the
// given marketplace pages.
func stage2UserPrompt(category string, urls []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From the marketplace listings below for the category %q, extract the buyer-facing selection questions.\n\n", category)
	for _, u := range urls {
		fmt.Fprintf(&b, "- %s\n", u)
	}
	b.WriteString(`
Return the single highest-priority question as "config", up to three further questions as "keys", and any pre-selected buyer questions as "buyers". Each question has a "name" and an "options" array of strings ordered by how often buyers pick them.

Respond with JSON of this shape:
{"config": {"name": "...", "options": ["..."]}, "keys": [{"name": "...", "options": ["..."]}], "buyers": []}`)
	return b.String()
}
