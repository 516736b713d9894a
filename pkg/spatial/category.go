package spatial

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// UnknownCategory is returned when no keyword matches an element name.
const UnknownCategory = "Unknown Category"

func init() {
	inflection.AddUncountable("equipment", "furniture", "framing", "rebar")
}

// categoryRule matches when every keyword occurs in the element name.
// noun is the ACC category in singular form; its last word is pluralized.
type categoryRule struct {
	keywords []string
	noun     string
}

// Order matters: the first matching rule wins.
var categoryRules = []categoryRule{
	{keywords: []string{"wall"}, noun: "wall"},
	{keywords: []string{"door"}, noun: "door"},
	{keywords: []string{"window"}, noun: "window"},
	{keywords: []string{"floor"}, noun: "floor"},
	{keywords: []string{"ceiling"}, noun: "ceiling"},
	{keywords: []string{"roof"}, noun: "roof"},
	{keywords: []string{"furniture"}, noun: "furniture"},
	{keywords: []string{"electrical"}, noun: "electrical equipment"},
	{keywords: []string{"structural", "framing"}, noun: "structural framing"},
	{keywords: []string{"structural", "column"}, noun: "structural column"},
	{keywords: []string{"rebar"}, noun: "structural rebar"},
}

// CategoryFromName guesses an element's ACC category from its display name.
//
// This is a keyword heuristic, not a property lookup: it never reads the
// element's real category property and will misfile elements whose names do
// not mention their category. Treat the result as a hint for grouping.
func CategoryFromName(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		if containsAll(lower, rule.keywords) {
			return categoryDisplayName(rule.noun)
		}
	}
	return UnknownCategory
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

// categoryDisplayName turns "structural column" into "Structural Columns".
func categoryDisplayName(noun string) string {
	words := strings.Fields(noun)
	last := len(words) - 1
	words[last] = inflection.Plural(words[last])
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
