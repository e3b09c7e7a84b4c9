package llm

import (
	"encoding/json"
	"strings"

	"github.com/speclens/backend/internal/domain"
)

// ParseStage1Response salvages and decodes a Stage 1 record from raw model
// output. The model wraps JSON in prose or markdown fences often enough
// that the payload is located by brace scanning rather than trusted as-is.
func ParseStage1Response(content string) (*domain.Stage1Record, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var record domain.Stage1Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, domain.ErrMalformedResponse
	}

	for i := range record.SubCategories {
		sc := &record.SubCategories[i]
		sc.Primary = cleanStage1Specs(sc.Primary)
		sc.Secondary = cleanStage1Specs(sc.Secondary)
		sc.Tertiary = cleanStage1Specs(sc.Tertiary)
	}
	return &record, nil
}

// ParseStage2Response salvages and decodes a Stage 2 record from raw model
// output.
func ParseStage2Response(content string) (*domain.Stage2Record, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var record domain.Stage2Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, domain.ErrMalformedResponse
	}

	if record.Config != nil {
		record.Config.Options = cleanOptionValues(record.Config.Options)
		if strings.TrimSpace(record.Config.Name) == "" {
			record.Config = nil
		}
	}
	record.Keys = cleanStage2Specs(record.Keys)
	record.Buyers = cleanStage2Specs(record.Buyers)
	return &record, nil
}

// cleanStage1Specs drops specs with blank names and scrubs their options.
func cleanStage1Specs(specs []domain.Stage1Spec) []domain.Stage1Spec {
	out := specs[:0]
	for _, spec := range specs {
		if strings.TrimSpace(spec.SpecName) == "" {
			continue
		}
		spec.Options = cleanOptionValues(spec.Options)
		out = append(out, spec)
	}
	return out
}

// cleanStage2Specs drops specs with blank names and scrubs their options.
func cleanStage2Specs(specs []domain.Stage2Spec) []domain.Stage2Spec {
	out := specs[:0]
	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			continue
		}
		spec.Options = cleanOptionValues(spec.Options)
		out = append(out, spec)
	}
	return out
}

// cleanOptionValues drops empty option strings; the engine never sees them.
func cleanOptionValues(options []string) []string {
	out := options[:0]
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// extractJSON returns the first balanced top-level JSON object in the text.
// Markdown code fences are stripped first; braces inside JSON strings are
// skipped during the balance scan.
func extractJSON(content string) (string, error) {
	content = stripCodeFences(content)

	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", domain.ErrMalformedResponse
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", domain.ErrMalformedResponse
}

// stripCodeFences removes ```json ... ``` style fencing when present.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}
	var b strings.Builder
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
