package preprocess

import "strings"

// defaultSynonyms canonicalizes category spellings that appear under
// more than one name in the source data.
var defaultSynonyms = map[string]string{
	"notebooks_and_journals": "notebooks_journals",
	"more_bags":              "bags_more",
}

// NormalizeCategory standardizes a raw category label: lowercase,
// trimmed, spaces and hyphens collapsed to underscores, "&" spelled out,
// then mapped through the synonym table. Returns "" for labels that
// carry no information (empty or a literal "nan").
func NormalizeCategory(raw string, synonyms map[string]string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	c = strings.ReplaceAll(c, "&", "and")
	c = strings.ReplaceAll(c, "-", "_")
	c = strings.Join(strings.Fields(c), "_")
	c = strings.Trim(c, "_")

	// Collapse runs of underscores left by mixed separators.
	for strings.Contains(c, "__") {
		c = strings.ReplaceAll(c, "__", "_")
	}

	if c == "" || c == "nan" {
		return ""
	}

	if canonical, ok := synonyms[c]; ok {
		return canonical
	}
	return c
}
