package recommend

import "strings"

// Extract scans a free-text utterance against the rule table and returns the
// cards whose keywords matched, in rule declaration order. Extraction is
// purely additive; deduplication against the session happens in Merge.
func Extract(utterance string) []Card {
	lowered := strings.ToLower(utterance)

	var cards []Card
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				cards = append(cards, r.card)
				break
			}
		}
	}
	return cards
}

// Merge unions newly extracted cards into an existing set, keyed by title,
// first write wins. The input slice is never shrunk.
func Merge(existing, extracted []Card) []Card {
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[c.Title] = struct{}{}
	}

	merged := existing
	for _, c := range extracted {
		if _, ok := seen[c.Title]; ok {
			continue
		}
		seen[c.Title] = struct{}{}
		merged = append(merged, c)
	}
	return merged
}
