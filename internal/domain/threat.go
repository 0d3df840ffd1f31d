package domain

import "strings"

// KeywordWeight is one entry of the threat vocabulary. Weight 1 marks a mild
// indicator ("warning", "protest"), weight 2 a strong one ("bomb", "riot").
type KeywordWeight struct {
	Term   string
	Weight int
}

// Classifier scores free text against the weighted threat vocabulary.
type Classifier struct {
	keywords  []KeywordWeight
	threshold int
}

// NewClassifier creates a classifier. A non-positive threshold falls back to
// the documented default of 2.
func NewClassifier(keywords []KeywordWeight, threshold int) *Classifier {
	if threshold <= 0 {
		threshold = 2
	}
	normalized := make([]KeywordWeight, len(keywords))
	for i, kw := range keywords {
		normalized[i] = KeywordWeight{Term: strings.ToLower(kw.Term), Weight: kw.Weight}
	}
	return &Classifier{keywords: normalized, threshold: threshold}
}

// Score sums the weights of every vocabulary term that appears as a substring
// of the lower-cased text. Matching is not word-bounded: "strike" scores
// inside "airstrike".
func (c *Classifier) Score(text string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	total := 0
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw.Term) {
			total += kw.Weight
		}
	}
	return total
}

// Unsafe reports whether the text clears the threat threshold. Empty text is
// always safe.
func (c *Classifier) Unsafe(text string) bool {
	if text == "" {
		return false
	}
	return c.Score(text) >= c.threshold
}
