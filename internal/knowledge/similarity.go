package knowledge

// Jaro-Winkler parameters.
const (
	prefixScale = 0.1
	maxPrefix   = 4
)

// Similarity returns the Jaro-Winkler similarity of a and b in [0, 1],
// comparing runes. Identical strings score 1; strings with no matching
// runes score 0. Transpositions and single substitutions in short words
// stay well above SimilarityThreshold ("jeac" vs "geac" is 0.83).
func Similarity(a, b string) float64 {
	j := jaro([]rune(a), []rune(b))
	if j == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	l := 0
	for l < len(ra) && l < len(rb) && l < maxPrefix && ra[l] == rb[l] {
		l++
	}
	return j + float64(l)*prefixScale*(1-j)
}

func jaro(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))
	matches := 0
	for i := range a {
		lo := max(0, i-window)
		hi := min(len(b), i+window+1)
		for k := lo; k < hi; k++ {
			if matchedB[k] || a[i] != b[k] {
				continue
			}
			matchedA[i], matchedB[k] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Count matched runes that appear in a different order.
	transposed, k := 0, 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if a[i] != b[k] {
			transposed++
		}
		k++
	}

	m := float64(matches)
	t := float64(transposed) / 2
	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}
