package features

import "regexp"

// Code patterns, in output column order.
var codePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"fn", regexp.MustCompile(`fn [[:alpha:]]\w*\(.*\)`)},
	{"let", regexp.MustCompile(`let( mut)? [[:alpha:]]\w*.* = .*;`)},
	{"if_let_match", regexp.MustCompile(`if let .* = match`)},
	{"macro", regexp.MustCompile(`[[:alpha:]]\w*! ?[{(\[].*[)\]}]`)},
}

// CodePatternNames returns the names of the code patterns in column order.
func CodePatternNames() []string {
	names := make([]string, len(codePatterns))
	for i, p := range codePatterns {
		names[i] = p.name
	}
	return names
}

// CodeMatches reports, per code pattern, whether the text contains it (1) or not (0).
func CodeMatches(text string) []float32 {
	out := make([]float32, len(codePatterns))
	for i, p := range codePatterns {
		if p.re.MatchString(text) {
			out[i] = 1
		}
	}
	return out
}
