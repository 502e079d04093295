package dataset

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KnownClasses are the feature classes recognised on the command line.
var KnownClasses = []string{"clinical", "tumor", "blood"}

// Capitalize upper-cases the first rune and lower-cases the rest,
// so "TUMOR" and "tumor" both become "Tumor".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// RetainedClasses returns the capitalized known classes minus the excluded ones.
func RetainedClasses(known, excluded []string) map[string]bool {
	retained := make(map[string]bool, len(known))
	for _, k := range known {
		retained[Capitalize(k)] = true
	}
	for _, e := range excluded {
		delete(retained, Capitalize(e))
	}
	return retained
}

// SelectFeatures returns, in class-file order, the features whose class is
// retained. Class labels in the file must already be capitalized
// ("Clinical", "Tumor", "Blood") to match. Excluding every class gives an
// empty result.
func SelectFeatures(classes FeatureClasses, known, excluded []string) []string {
	retained := RetainedClasses(known, excluded)
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if retained[c.Class] {
			out = append(out, c.Feature)
		}
	}
	return out
}
