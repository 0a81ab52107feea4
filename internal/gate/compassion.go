package gate

import "strings"

// #region harm-keywords

var harmKeywords = []string{
	"destroy", "attack", "deceive", "manipulate", "exploit",
	"harm", "coerce", "sabotage", "threaten",
}

// #endregion harm-keywords

// #region compassion

// compassionScore is a 0-1 heuristic over the intention's description and
// goal text: clarity (length, structure, non-repetition), goal-overlap
// relevance, and a harm-keyword penalty.
func compassionScore(description, goal string) float32 {
	clarity := clarityScore(description)
	relevance := overlapScore(description, goal)

	var penalty float32
	lower := strings.ToLower(description + " " + goal)
	for _, kw := range harmKeywords {
		if strings.Contains(lower, kw) {
			penalty += 0.3
		}
	}

	score := 0.5*clarity + 0.5*relevance - penalty
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// #endregion compassion

// #region clarity

func clarityScore(text string) float32 {
	words := strings.Fields(strings.ToLower(text))
	n := len(words)
	if n == 0 {
		return 0
	}

	// Length band: too terse or too rambling both read poorly.
	var length float32
	switch {
	case n >= 4 && n <= 40:
		length = 1.0
	case n < 4:
		length = float32(n) / 4.0
	default:
		length = 40.0 / float32(n)
	}

	unique := make(map[string]struct{}, n)
	for _, w := range words {
		unique[w] = struct{}{}
	}
	nonRepetition := float32(len(unique)) / float32(n)

	var structure float32
	if n > 1 && strings.ContainsAny(text, "abcdefghijklmnopqrstuvwxyz") {
		structure = 1.0
	}

	return 0.4*length + 0.3*nonRepetition + 0.3*structure
}

// #endregion clarity

// #region overlap

func overlapScore(description, goal string) float32 {
	normalize := func(s string) []string {
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "-", " ")
		return strings.Fields(s)
	}
	descWords := normalize(description)
	goalWords := normalize(goal)
	if len(descWords) == 0 || len(goalWords) == 0 {
		return 0
	}
	goalSet := make(map[string]struct{}, len(goalWords))
	for _, w := range goalWords {
		goalSet[strings.Trim(w, "-\"'.,")] = struct{}{}
	}
	hits := 0
	for _, w := range descWords {
		if _, ok := goalSet[strings.Trim(w, "-\"'.,")]; ok {
			hits++
		}
	}
	smaller := len(goalWords)
	if len(descWords) < smaller {
		smaller = len(descWords)
	}
	score := float32(hits) / float32(smaller)
	if score > 1 {
		return 1
	}
	return score
}

// #endregion overlap
