package vectorizer

import (
	"math"

	"github.com/happyhackingspace/rustsub/internal/textutil"
)

// TfidfVectorizer converts text to TF-IDF weighted vectors.
type TfidfVectorizer struct {
	CountVec  *CountVectorizer `json:"count_vec"`
	IDF       []float64        `json:"idf"`
	StopWords map[string]bool  `json:"stop_words,omitempty"`
}

// NewTfidfVectorizer creates a TfidfVectorizer. Stop words are normalized the
// same way document words are before they are removed from the vocabulary.
func NewTfidfVectorizer(minDF int, stopWords map[string]bool) *TfidfVectorizer {
	normalized := make(map[string]bool, len(stopWords))
	for w := range stopWords {
		for _, t := range textutil.Words(w) {
			normalized[t] = true
		}
	}
	return &TfidfVectorizer{
		CountVec:  NewCountVectorizer(false, minDF),
		StopWords: normalized,
	}
}

// Fit computes IDF values from a corpus.
func (tv *TfidfVectorizer) Fit(corpus []string) {
	tv.CountVec.Fit(corpus)
	tv.dropStopWords()

	nDocs := float64(len(corpus))
	vocabSize := tv.CountVec.VocabSize()
	tv.IDF = make([]float64, vocabSize)

	// Compute document frequencies
	df := make([]float64, vocabSize)
	for _, doc := range corpus {
		sv := tv.CountVec.Transform(doc)
		for _, idx := range sv.Indices {
			df[idx]++
		}
	}

	// sklearn smooth IDF: log((1 + n) / (1 + df)) + 1
	for i := 0; i < vocabSize; i++ {
		tv.IDF[i] = math.Log((1+nDocs)/(1+df[i])) + 1
	}
}

func (tv *TfidfVectorizer) dropStopWords() {
	if len(tv.StopWords) == 0 {
		return
	}
	kept := tv.CountVec.Terms[:0]
	for _, term := range tv.CountVec.Terms {
		if !tv.StopWords[term] {
			kept = append(kept, term)
		}
	}
	tv.CountVec.Terms = kept
	_ = tv.CountVec.buildIndex()
}

// FitTransform fits and transforms the corpus.
func (tv *TfidfVectorizer) FitTransform(corpus []string) []SparseVector {
	tv.Fit(corpus)
	result := make([]SparseVector, len(corpus))
	for i, doc := range corpus {
		result[i] = tv.Transform(doc)
	}
	return result
}

// Transform converts a single document to an L2-normalized TF-IDF sparse vector.
func (tv *TfidfVectorizer) Transform(text string) SparseVector {
	sv := tv.CountVec.Transform(text)

	for i, idx := range sv.Indices {
		if idx < len(tv.IDF) {
			sv.Values[i] *= tv.IDF[idx]
		}
	}

	norm := sv.L2Norm()
	if norm > 0 {
		for i := range sv.Values {
			sv.Values[i] /= norm
		}
	}
	return sv
}

// Terms returns the fitted vocabulary in column order.
func (tv *TfidfVectorizer) Terms() []string {
	return tv.CountVec.Terms
}

// VocabSize returns the vocabulary size.
func (tv *TfidfVectorizer) VocabSize() int {
	return tv.CountVec.VocabSize()
}

// EnglishStopWords returns sklearn's default English stop words set.
func EnglishStopWords() map[string]bool {
	words := []string{
		"a", "about", "above", "after", "again", "against", "ain", "all", "am",
		"an", "and", "any", "are", "aren", "aren't", "as", "at", "be", "because",
		"been", "before", "being", "below", "between", "both", "but", "by", "can",
		"couldn", "couldn't", "d", "did", "didn", "didn't", "do", "does", "doesn",
		"doesn't", "doing", "don", "don't", "down", "during", "each", "few", "for",
		"from", "further", "had", "hadn", "hadn't", "has", "hasn", "hasn't", "have",
		"haven", "haven't", "having", "he", "her", "here", "hers", "herself", "him",
		"himself", "his", "how", "i", "if", "in", "into", "is", "isn", "isn't", "it",
		"it's", "its", "itself", "just", "ll", "m", "ma", "me", "mightn", "mightn't",
		"more", "most", "mustn", "mustn't", "my", "myself", "needn", "needn't", "no",
		"nor", "not", "now", "o", "of", "off", "on", "once", "only", "or", "other",
		"our", "ours", "ourselves", "out", "over", "own", "re", "s", "same", "shan",
		"shan't", "she", "she's", "should", "should've", "shouldn", "shouldn't", "so",
		"some", "such", "t", "than", "that", "that'll", "the", "their", "theirs",
		"them", "themselves", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "under", "until", "up", "ve", "very", "was", "wasn",
		"wasn't", "we", "were", "weren", "weren't", "what", "when", "where", "which",
		"while", "who", "whom", "why", "will", "with", "won", "won't", "wouldn",
		"wouldn't", "y", "you", "you'd", "you'll", "you're", "you've", "your",
		"yours", "yourself", "yourselves",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
