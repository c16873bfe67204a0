// Package dice provides the randomness abstraction and roll-result types for
// the combat engine. Every roll goes through an explicit Source handle so
// that encounters are reproducible and parallel batch runs never contend on
// shared generator state.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Advantage marks how a d20 roll should be made: straight, with advantage
// (roll twice, keep highest), or with disadvantage (keep lowest).
type Advantage int

const (
	Straight Advantage = iota
	WithAdvantage
	WithDisadvantage
)

// String returns "straight", "advantage" or "disadvantage".
func (a Advantage) String() string {
	switch a {
	case WithAdvantage:
		return "advantage"
	case WithDisadvantage:
		return "disadvantage"
	default:
		return "straight"
	}
}

// D20 rolls a twenty-sided die, applying advantage or disadvantage.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, 20].
func D20(src Source, adv Advantage) int {
	first := src.Intn(20) + 1
	if adv == Straight {
		return first
	}
	second := src.Intn(20) + 1
	if adv == WithAdvantage && second > first {
		return second
	}
	if adv == WithDisadvantage && second < first {
		return second
	}
	return first
}
