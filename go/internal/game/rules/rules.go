// Package rules decides which card triples form a set.
package rules

// Rules is the set-validity predicate. Implementations must be pure.
type Rules interface {
	// IsSet reports whether exactly three cards form a valid set.
	IsSet(cards []int) bool
	// FindSets returns up to limit valid triples among cards, in a
	// deterministic order. A limit <= 0 returns every triple.
	FindSets(cards []int, limit int) [][]int
}

// CountSets reports how many valid triples exist among cards, stopping at limit.
func CountSets(r Rules, cards []int, limit int) int {
	return len(r.FindSets(cards, limit))
}

// Func adapts a three-card predicate to Rules.
type Func func(a, b, c int) bool

func (f Func) IsSet(cards []int) bool {
	if len(cards) != 3 {
		return false
	}
	return f(cards[0], cards[1], cards[2])
}

func (f Func) FindSets(cards []int, limit int) [][]int {
	return findSets(f.IsSet, cards, limit)
}

// Features is the classic rule: a card id encodes FeatureCount features of
// FeatureSize values each (base-FeatureSize digits), and three cards form a
// set when every feature is either all equal or all different.
type Features struct {
	FeatureSize  int
	FeatureCount int
}

// NewFeatures returns the feature rule for the given card geometry.
func NewFeatures(featureSize, featureCount int) Features {
	return Features{FeatureSize: featureSize, FeatureCount: featureCount}
}

// CardFeatures decodes a card id into its feature values.
func (f Features) CardFeatures(card int) []int {
	out := make([]int, f.FeatureCount)
	for i := 0; i < f.FeatureCount; i++ {
		out[i] = card % f.FeatureSize
		card /= f.FeatureSize
	}
	return out
}

func (f Features) IsSet(cards []int) bool {
	if len(cards) != 3 || f.FeatureSize <= 0 {
		return false
	}
	if cards[0] == cards[1] || cards[1] == cards[2] || cards[0] == cards[2] {
		return false
	}
	a, b, c := cards[0], cards[1], cards[2]
	for i := 0; i < f.FeatureCount; i++ {
		x, y, z := a%f.FeatureSize, b%f.FeatureSize, c%f.FeatureSize
		allSame := x == y && y == z
		allDiff := x != y && y != z && x != z
		if !allSame && !allDiff {
			return false
		}
		a, b, c = a/f.FeatureSize, b/f.FeatureSize, c/f.FeatureSize
	}
	return true
}

func (f Features) FindSets(cards []int, limit int) [][]int {
	return findSets(f.IsSet, cards, limit)
}

func findSets(isSet func([]int) bool, cards []int, limit int) [][]int {
	var found [][]int
	triple := make([]int, 3)
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			for k := j + 1; k < len(cards); k++ {
				triple[0], triple[1], triple[2] = cards[i], cards[j], cards[k]
				if !isSet(triple) {
					continue
				}
				found = append(found, []int{cards[i], cards[j], cards[k]})
				if limit > 0 && len(found) >= limit {
					return found
				}
			}
		}
	}
	return found
}
