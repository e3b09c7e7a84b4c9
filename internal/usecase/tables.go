package usecase

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Tables holds the declarative matching data: synonym dictionary, filler
// words, and the domain equivalence groups. Keeping these as data rather
// than code branches lets domain experts extend them (via a YAML override
// file) without touching matcher logic.
type Tables struct {
	// Synonyms maps a variant token to its canonical form (thk -> thickness).
	Synonyms map[string]string `yaml:"synonyms"`

	// FillerWords are category-noise tokens dropped during normalization
	// (sheet, plate, pipe...) that should not affect attribute identity.
	FillerWords []string `yaml:"filler_words"`

	// SynonymGroups are word groups whose members all denote the same
	// attribute (material/composition/fabric). Used by the name matcher.
	SynonymGroups [][]string `yaml:"synonym_groups"`

	// GradeGroups are steel/material grade equivalence groups
	// (304/304L/SS304/"stainless steel 304").
	GradeGroups [][]string `yaml:"grade_groups"`

	// MaterialGroups are generic material-name equivalence groups
	// (ms/mild steel/carbon steel).
	MaterialGroups [][]string `yaml:"material_groups"`

	// BrandGroups are brand-name variant groups.
	BrandGroups [][]string `yaml:"brand_groups"`

	// FinishGroups are finish/surface variant groups (mirror/polished).
	FinishGroups [][]string `yaml:"finish_groups"`

	// ShapeGroups are shape variant groups (round/circular/circle).
	ShapeGroups [][]string `yaml:"shape_groups"`

	// SizeWordGroups are size-word variant groups (small/sm/s).
	SizeWordGroups [][]string `yaml:"size_word_groups"`

	// UnitFamilies lists interchangeable unit spellings; the first entry of
	// each family is the canonical unit.
	UnitFamilies [][]string `yaml:"unit_families"`

	// MeasureWords are normalized-name tokens that mark a spec as a
	// measurable quantity, enabling range-vs-discrete augmentation.
	MeasureWords []string `yaml:"measure_words"`

	// ImportantAttributes are high-value attribute words that earn a
	// scoring bonus during buyer-ISQ selection.
	ImportantAttributes []string `yaml:"important_attributes"`

	// sortedSynonymKeys caches dictionary keys in sorted order so substring
	// fallback lookups are deterministic.
	sortedSynonymKeys []string

	fillerSet  map[string]bool
	measureSet map[string]bool
	unitIndex  map[string]string
}

// DefaultTables returns the authoritative built-in table set, tuned for
// industrial/hardware B2B specifications.
func DefaultTables() *Tables {
	t := &Tables{
		Synonyms: map[string]string{
			"thk":         "thickness",
			"thck":        "thickness",
			"dia":         "diameter",
			"diam":        "diameter",
			"bore":        "diameter",
			"colour":      "color",
			"wt":          "weight",
			"wdth":        "width",
			"lngth":       "length",
			"len":         "length",
			"perforation": "hole",
			"usage":       "application",
			"qty":         "quantity",
			"dimension":   "size",
			"thikness":    "thickness",
			"finishing":   "finish",
			"surface":     "finish",
		},
		FillerWords: []string{
			"sheet", "plate", "pipe", "rod", "bar", "wire", "coil", "strip",
			"in", "for", "of", "the", "and", "or", "to", "per", "type",
		},
		SynonymGroups: [][]string{
			{"material", "composition", "fabric"},
			{"grade", "quality", "class", "standard"},
			{"diameter", "dia", "bore"},
			{"bolt", "bolts", "screw"},
			{"thickness", "gauge", "thk"},
			{"size", "dimension"},
			{"finish", "surface", "coating"},
			{"color", "colour", "shade"},
			{"brand", "make", "manufacturer"},
			{"shape", "profile", "section"},
			{"application", "usage", "use"},
			{"weight", "wt", "mass"},
		},
		GradeGroups: [][]string{
			{"304", "304l", "304h", "ss304", "ss 304", "stainless steel 304"},
			{"316", "316l", "316ti", "ss316", "ss 316", "stainless steel 316"},
			{"202", "ss202", "ss 202", "stainless steel 202"},
			{"310", "310s", "ss310", "ss 310", "stainless steel 310"},
			{"321", "321h", "ss321", "ss 321", "stainless steel 321"},
			{"410", "410s", "ss410", "ss 410", "stainless steel 410"},
			{"409", "409l", "ss409", "ss 409", "stainless steel 409"},
			{"430", "ss430", "ss 430", "stainless steel 430"},
		},
		MaterialGroups: [][]string{
			{"ms", "mild steel", "carbon steel"},
			{"gi", "galvanized iron", "galvanised iron"},
			{"aluminium", "aluminum", "al"},
			{"ss", "stainless steel", "stainless"},
			{"cu", "copper"},
			{"pvc", "polyvinyl chloride"},
			{"hdpe", "high density polyethylene"},
			{"frp", "fiberglass", "fibreglass"},
			{"brass"},
			{"bronze"},
		},
		BrandGroups: [][]string{
			{"tata", "tata steel"},
			{"jindal", "jindal steel", "jsl"},
			{"sail", "steel authority"},
			{"jsw", "jsw steel"},
			{"aperam"},
			{"posco"},
			{"outokumpu"},
		},
		FinishGroups: [][]string{
			{"mirror", "polished", "mirror finish"},
			{"hairline", "brushed", "hl finish"},
			{"mill finish", "mill"},
			{"galvanized", "galvanised", "gi coated"},
			{"matt", "matte", "dull"},
			{"2b", "2b finish"},
			{"ba", "ba finish", "bright annealed"},
			{"powder coated", "powder coating"},
		},
		ShapeGroups: [][]string{
			{"round", "circular", "circle"},
			{"square", "sq"},
			{"rectangular", "rectangle", "rect"},
			{"hexagonal", "hexagon", "hex"},
			{"oval", "elliptical"},
			{"pipe", "tube", "tubular"},
			{"flat", "strip"},
			{"angle", "l shape", "l shaped"},
		},
		SizeWordGroups: [][]string{
			{"small", "sm", "s"},
			{"medium", "med", "m"},
			{"large", "lg", "l"},
			{"extra large", "xl"},
			{"custom", "customized", "customised", "as per requirement"},
			{"standard", "std"},
		},
		UnitFamilies: [][]string{
			{"mm", "millimeter", "millimetre"},
			{"cm", "centimeter", "centimetre"},
			{"m", "meter", "metre", "mtr"},
			{"inch", "inches", "in", `"`},
			{"ft", "feet", "foot", "'"},
			{"kg", "kilogram", "kgs"},
			{"g", "gram", "gm"},
			{"ton", "tonne", "mt"},
			{"swg", "gauge"},
		},
		MeasureWords: []string{
			"thickness", "width", "length", "diameter", "size", "height",
			"weight", "gauge",
		},
		ImportantAttributes: []string{
			"material", "thickness", "grade", "size", "width", "length",
		},
	}
	t.reindex()
	return t
}

// LoadTables reads a YAML override file and merges it over the defaults.
// Only non-empty sections in the file replace the corresponding defaults,
// so an override file can extend a single table without restating the rest.
func LoadTables(path string) (*Tables, error) {
	base := DefaultTables()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}

	base.merge(&override)
	base.reindex()
	return base, nil
}

// merge replaces each non-empty section of the receiver with the override's.
func (t *Tables) merge(o *Tables) {
	if len(o.Synonyms) > 0 {
		for k, v := range o.Synonyms {
			t.Synonyms[k] = v
		}
	}
	if len(o.FillerWords) > 0 {
		t.FillerWords = o.FillerWords
	}
	if len(o.SynonymGroups) > 0 {
		t.SynonymGroups = o.SynonymGroups
	}
	if len(o.GradeGroups) > 0 {
		t.GradeGroups = o.GradeGroups
	}
	if len(o.MaterialGroups) > 0 {
		t.MaterialGroups = o.MaterialGroups
	}
	if len(o.BrandGroups) > 0 {
		t.BrandGroups = o.BrandGroups
	}
	if len(o.FinishGroups) > 0 {
		t.FinishGroups = o.FinishGroups
	}
	if len(o.ShapeGroups) > 0 {
		t.ShapeGroups = o.ShapeGroups
	}
	if len(o.SizeWordGroups) > 0 {
		t.SizeWordGroups = o.SizeWordGroups
	}
	if len(o.UnitFamilies) > 0 {
		t.UnitFamilies = o.UnitFamilies
	}
	if len(o.MeasureWords) > 0 {
		t.MeasureWords = o.MeasureWords
	}
	if len(o.ImportantAttributes) > 0 {
		t.ImportantAttributes = o.ImportantAttributes
	}
}

// reindex rebuilds the derived lookup structures after a merge.
func (t *Tables) reindex() {
	t.sortedSynonymKeys = make([]string, 0, len(t.Synonyms))
	for k := range t.Synonyms {
		t.sortedSynonymKeys = append(t.sortedSynonymKeys, k)
	}
	sort.Strings(t.sortedSynonymKeys)

	t.fillerSet = make(map[string]bool, len(t.FillerWords))
	for _, w := range t.FillerWords {
		t.fillerSet[w] = true
	}

	t.measureSet = make(map[string]bool, len(t.MeasureWords))
	for _, w := range t.MeasureWords {
		t.measureSet[w] = true
	}

	t.unitIndex = make(map[string]string)
	for _, family := range t.UnitFamilies {
		if len(family) == 0 {
			continue
		}
		canonical := family[0]
		for _, spelling := range family {
			t.unitIndex[spelling] = canonical
		}
	}
}

// isFiller reports whether the token is a category-noise word.
func (t *Tables) isFiller(token string) bool {
	return t.fillerSet[token]
}

// isMeasureWord reports whether the token marks a measurable quantity.
func (t *Tables) isMeasureWord(token string) bool {
	return t.measureSet[token]
}

// lookupUnit resolves a unit spelling to its family's canonical form.
// The second return is false for tokens that are not known units.
func (t *Tables) lookupUnit(token string) (string, bool) {
	canonical, ok := t.unitIndex[token]
	return canonical, ok
}

// equivalenceGroups returns the generic option-level equivalence tables in
// the priority order the option matcher consults them. Grade groups are
/// excluded: they carry an extra digit-agreement guard and are checked first.
func (t *Tables) equivalenceGroups() [][][]string {
	return [][][]string{
		t.MaterialGroups,
		t.BrandGroups,
		t.FinishGroups,
		t.ShapeGroups,
		t.SizeWordGroups,
	}
}
