package rules

// DamageOutcome is the result of applying one packet of damage to a creature.
type DamageOutcome int

const (
	// Alive: the creature took the damage and stayed up.
	Alive DamageOutcome = iota
	// KnockedOut: the creature dropped to 0 HP and is now unconscious and
	// dying. Only reachable for creatures that make death saving throws.
	KnockedOut
	// StillDying: the creature was already dying and took one or two failed
	// death saves instead of hit point damage.
	StillDying
	// DeadOutcome: the creature died, either outright (no death saves),
	// or by accumulating three failed death saves.
	DeadOutcome
	// InstantDeath: excess damage beyond 0 HP met or exceeded max HP.
	InstantDeath
	// Reanimated: a post-damage trait converted a lethal outcome back to
	// 1 HP. Never produced by TakeDamage itself.
	Reanimated
)

// String returns a human-readable outcome label.
func (o DamageOutcome) String() string {
	switch o {
	case Alive:
		return "alive"
	case KnockedOut:
		return "knocked out"
	case StillDying:
		return "still dying"
	case DeadOutcome:
		return "dead"
	case InstantDeath:
		return "instant death"
	case Reanimated:
		return "reanimated"
	default:
		return "unknown"
	}
}

// Lethal reports whether the outcome leaves the target dead or down.
//
// Postcondition: Returns true for KnockedOut, StillDying, DeadOutcome and InstantDeath.
func (o DamageOutcome) Lethal() bool {
	switch o {
	case KnockedOut, StillDying, DeadOutcome, InstantDeath:
		return true
	}
	return false
}
