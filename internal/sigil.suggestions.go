package internal

import (
	"sort"
	"strconv"
	"strings"
)

// Suggestion limits used when building name-error messages
const (
	DefaultMaxSuggestions = 3
	DefaultMaxListedNames = 5
)

// FindSimilarNames finds candidates similar to target, closest first,
// up to maxSuggestions. Similarity is Levenshtein distance within a
// threshold scaled to the target's length. Ties break alphabetically
// so error messages stay deterministic.
func FindSimilarNames(target string, candidates []string, maxSuggestions int) []string {
	if len(candidates) == 0 || maxSuggestions <= 0 {
		return nil
	}

	maxDistance := len(target) / 2
	if maxDistance < 2 {
		maxDistance = 2
	}

	type scored struct {
		name     string
		distance int
	}

	var similar []scored
	targetLower := strings.ToLower(target)

	for _, candidate := range candidates {
		dist := levenshteinDistance(targetLower, strings.ToLower(candidate))
		if dist <= maxDistance {
			similar = append(similar, scored{name: candidate, distance: dist})
		}
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].distance != similar[j].distance {
			return similar[i].distance < similar[j].distance
		}
		return similar[i].name < similar[j].name
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(similar) && i < maxSuggestions; i++ {
		result = append(result, similar[i].name)
	}

	return result
}

// levenshteinDistance calculates the Levenshtein distance between two
// strings: the minimum number of single-character edits (insertions,
// deletions, or substitutions) required to change one into the other.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rows are enough; full matrix would be wasted memory.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// FormatSuggestions formats a list of suggestions as a message suffix.
// Example output: ". Did you mean 'name', 'names', or 'named'?"
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}

	if len(suggestions) == 1 {
		return ". Did you mean '" + suggestions[0] + "'?"
	}

	var sb strings.Builder
	sb.WriteString(". Did you mean ")

	for i, s := range suggestions {
		if i > 0 {
			if i == len(suggestions)-1 {
				sb.WriteString(" or ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteByte('\'')
		sb.WriteString(s)
		sb.WriteByte('\'')
	}

	sb.WriteByte('?')
	return sb.String()
}

// FormatAvailableNames formats the bound names as a message suffix,
// limited to maxNames to keep error messages readable.
// Example output: ". Available names: 'age', 'email', 'name' (3 more)"
func FormatAvailableNames(names []string, maxNames int) string {
	if len(names) == 0 {
		return ""
	}

	if maxNames <= 0 {
		maxNames = DefaultMaxListedNames
	}

	var sb strings.Builder
	sb.WriteString(". Available names: ")

	displayCount := len(names)
	if displayCount > maxNames {
		displayCount = maxNames
	}

	for i := 0; i < displayCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('\'')
		sb.WriteString(names[i])
		sb.WriteByte('\'')
	}

	remaining := len(names) - displayCount
	if remaining > 0 {
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(remaining))
		sb.WriteString(" more)")
	}

	return sb.String()
}
