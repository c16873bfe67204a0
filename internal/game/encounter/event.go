package encounter

import "go.uber.org/zap"

// EventKind tags one structured encounter event.
type EventKind string

const (
	EventInitiative       EventKind = "initiative"
	EventRoundStart       EventKind = "round_start"
	EventMovement         EventKind = "movement"
	EventDash             EventKind = "dash"
	EventAttack           EventKind = "attack"
	EventDamage           EventKind = "damage"
	EventConditionApplied EventKind = "condition_applied"
	EventConditionRemoved EventKind = "condition_removed"
	EventDeathSave        EventKind = "death_save"
	EventFinished         EventKind = "finished"
)

// Event is one structured record emitted during resolution. Fields are
// populated per kind; zero values are omitted on the wire so a front end can
// switch on Kind and read only what applies. The core never blocks on event
// delivery.
type Event struct {
	Kind  EventKind `json:"kind"`
	Round int       `json:"round"`

	Actor  string `json:"actor,omitempty"`
	Target string `json:"target,omitempty"`
	Weapon string `json:"weapon,omitempty"`

	// Roll carries the formatted roll breakdown ("17 (12 +5)") for attack
	// and death-save events.
	Roll string `json:"roll,omitempty"`
	Hit  bool   `json:"hit,omitempty"`
	Crit bool   `json:"crit,omitempty"`
	// Modifiers are the named advantage/disadvantage causes in effect.
	Modifiers []string `json:"modifiers,omitempty"`

	Damage int `json:"damage,omitempty"`
	// Notes carries resistance/vulnerability/immunity annotations on damage
	// events.
	Notes     []string `json:"notes,omitempty"`
	Outcome   string   `json:"outcome,omitempty"`
	TargetHP  int      `json:"target_hp,omitempty"`
	Condition string   `json:"condition,omitempty"`

	// Position and movement fields, in feet.
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Moved float64 `json:"moved,omitempty"`

	Winner    string `json:"winner,omitempty"`
	Stalemate bool   `json:"stalemate,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Sink receives encounter events. Implementations must not block: resolution
// treats emission as fire-and-forget.
type Sink interface {
	Emit(ev Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// ZapSink renders events as structured log lines.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink wraps logger as an event sink.
//
// Precondition: logger must be non-nil.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Emit(ev Event) {
	fields := []zap.Field{
		zap.Int("round", ev.Round),
	}
	if ev.Actor != "" {
		fields = append(fields, zap.String("actor", ev.Actor))
	}
	if ev.Target != "" {
		fields = append(fields, zap.String("target", ev.Target))
	}
	if ev.Weapon != "" {
		fields = append(fields, zap.String("weapon", ev.Weapon))
	}
	if ev.Roll != "" {
		fields = append(fields, zap.String("roll", ev.Roll))
	}
	if len(ev.Modifiers) > 0 {
		fields = append(fields, zap.Strings("modifiers", ev.Modifiers))
	}
	switch ev.Kind {
	case EventAttack:
		fields = append(fields, zap.Bool("hit", ev.Hit), zap.Bool("crit", ev.Crit))
	case EventDamage:
		fields = append(fields, zap.Int("damage", ev.Damage), zap.String("outcome", ev.Outcome), zap.Int("target_hp", ev.TargetHP))
		if len(ev.Notes) > 0 {
			fields = append(fields, zap.Strings("notes", ev.Notes))
		}
	case EventConditionApplied, EventConditionRemoved:
		fields = append(fields, zap.String("condition", ev.Condition))
	case EventDeathSave, EventInitiative:
		fields = append(fields, zap.String("outcome", ev.Outcome))
	case EventMovement, EventDash:
		fields = append(fields, zap.Float64("x", ev.X), zap.Float64("y", ev.Y), zap.Float64("moved", ev.Moved))
	case EventFinished:
		fields = append(fields, zap.String("winner", ev.Winner), zap.Bool("stalemate", ev.Stalemate))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	s.logger.Info(string(ev.Kind), fields...)
}
