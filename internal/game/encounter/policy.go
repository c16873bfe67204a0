package encounter

// OnHitDownedPolicy controls whether on-hit weapon effects (grapples, nets)
// still apply when the triggering damage already downed the target.
type OnHitDownedPolicy string

const (
	// OnHitDownedApply applies on-hit effects unconditionally after damage
	// resolution.
	OnHitDownedApply OnHitDownedPolicy = "apply"
	// OnHitDownedSuppress skips on-hit effects when the damage outcome was
	// lethal.
	OnHitDownedSuppress OnHitDownedPolicy = "suppress"
)

// Policy holds the tunable encounter rules.
type Policy struct {
	// MaxRounds caps the encounter; reaching it without a winner is a
	// stalemate, a defined terminal outcome rather than an error.
	MaxRounds int
	// ToTheDeath keeps fighting while an enemy is merely dying; false ends
	// the encounter as soon as every enemy is down.
	ToTheDeath bool
	// OnHitDowned: see OnHitDownedPolicy.
	OnHitDowned OnHitDownedPolicy
	// Separation is the starting distance in feet between opposing teams.
	Separation float64
}

// DefaultPolicy mirrors the rule set's defaults: ten-round cap, fight to the
// death, on-hit effects apply even against downed targets, teams start 30 ft
// apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxRounds:   10,
		ToTheDeath:  true,
		OnHitDowned: OnHitDownedApply,
		Separation:  30,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxRounds <= 0 {
		p.MaxRounds = def.MaxRounds
	}
	if p.OnHitDowned == "" {
		p.OnHitDowned = def.OnHitDowned
	}
	if p.Separation <= 0 {
		p.Separation = def.Separation
	}
	return p
}
