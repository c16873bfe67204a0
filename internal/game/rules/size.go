package rules

import "fmt"

// Size is a creature size category. Sizes are ordered: Tiny < Small < Medium
// < Large < Huge < Gargantuan, so they compare with the usual operators.
type Size int

const (
	Tiny Size = iota + 1
	Small
	Medium
	Large
	Huge
	Gargantuan
)

var sizeNames = map[Size]string{
	Tiny:       "tiny",
	Small:      "small",
	Medium:     "medium",
	Large:      "large",
	Huge:       "huge",
	Gargantuan: "gargantuan",
}

// String returns the lowercase size name, or "unknown" for invalid values.
func (s Size) String() string {
	if name, ok := sizeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSize parses a size name such as "medium".
//
// Postcondition: Returns a valid Size or a descriptive error.
func ParseSize(s string) (Size, error) {
	for size, name := range sizeNames {
		if name == s {
			return size, nil
		}
	}
	return 0, fmt.Errorf("rules: unknown size %q", s)
}

// SizeFromHitDie infers a creature's size category from its hit die type,
// per the Monster Manual convention (d6 small .. d20 gargantuan).
//
// Postcondition: Returns (size, true) for known die sizes, (0, false) otherwise.
func SizeFromHitDie(die int) (Size, bool) {
	switch die {
	case 4:
		return Tiny, true
	case 6:
		return Small, true
	case 8:
		return Medium, true
	case 10:
		return Large, true
	case 12:
		return Huge, true
	case 20:
		return Gargantuan, true
	}
	return 0, false
}

// DamageDiceMultiplier returns the factor applied to a manufactured weapon's
// damage dice count when wielded by a creature of this size (DMG p278).
//
// Postcondition: Returns 1 for Medium and smaller, 2/3/4 for Large/Huge/Gargantuan.
func (s Size) DamageDiceMultiplier() int {
	switch s {
	case Large:
		return 2
	case Huge:
		return 3
	case Gargantuan:
		return 4
	default:
		return 1
	}
}
