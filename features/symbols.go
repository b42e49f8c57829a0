package features

// Symbols is the ordered alphabet counted by SymbolCounts.
var Symbols = []rune{
	'_', '-', ';', ':', '!', '?', '.', '(', ')', '[', ']', '{', '}', '*', '/',
	'\\', '&', '%', '`', '+', '<', '=', '>', '|', '~', '$',
}

var symbolIndex = func() map[rune]int {
	m := make(map[rune]int, len(Symbols))
	for i, s := range Symbols {
		m[s] = i
	}
	return m
}()

// SymbolCounts counts every symbol of the alphabet in the raw text.
// The result has len(Symbols) entries in alphabet order.
func SymbolCounts(text string) []float32 {
	counts := make([]float32, len(Symbols))
	for _, r := range text {
		if i, ok := symbolIndex[r]; ok {
			counts[i]++
		}
	}
	return counts
}
