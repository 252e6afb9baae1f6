// Package moderation masks configured words in message content before the
// pipeline persists it.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Filter matches a word list with an Aho-Corasick automaton over a
// normalized view of the text and masks the original runes in place.
// A Filter built from an empty list passes everything through.
type Filter struct {
	machine     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

func NewFilter(words []string, replacement rune, log *slog.Logger) (*Filter, error) {
	if len(words) == 0 {
		return &Filter{replacement: replacement, log: log}, nil
	}

	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if normalized := normalize(word); len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: machine, replacement: replacement, log: log}, nil
}

// Censor returns the masked text plus the normalized words that matched.
// Spacing and punctuation of the original text are preserved.
func (f *Filter) Censor(original string) (string, []string) {
	if f.machine == nil || original == "" {
		return original, nil
	}

	runes := []rune(original)
	normalized, origin := normalizeWithOrigin(runes)
	matches := f.machine.MultiPatternSearch(normalized, false)
	if len(matches) == 0 {
		return original, nil
	}

	var found []string
	for _, match := range matches {
		found = append(found, string(match.Word))
		start := match.Pos
		end := start + len(match.Word)
		if start < 0 || end > len(origin) {
			continue
		}
		for i := origin[start]; i <= origin[end-1]; i++ {
			runes[i] = f.replacement
		}
	}

	f.log.Debug("Censored content", "matches", len(matches))
	return string(runes), found
}

// normalizeWithOrigin lowers the text, drops separator noise, and records
// for every kept rune its index in the original slice so masking can target
// the exact original span.
func normalizeWithOrigin(runes []rune) ([]rune, []int) {
	normalized := make([]rune, 0, len(runes))
	origin := make([]int, 0, len(runes))
	for i, r := range runes {
		if isSeparator(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		origin = append(origin, i)
	}
	return normalized, origin
}

func normalize(word string) []rune {
	normalized, _ := normalizeWithOrigin([]rune(word))
	return normalized
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
