package layout

// Default force parameters. They are tuned for a canvas where a settled edge
// is roughly 80 units long.
const (
	DefaultRepulsion   = 4000.0
	DefaultAttraction  = 0.06
	DefaultRestLength  = 60.0
	DefaultDamping     = 0.85
	DefaultMinDistance = 5.0
	DefaultTimeStep    = 1.0
	DefaultMaxSpeed    = 25.0
	DefaultJitter      = 40.0
	DefaultSeed        = 1
)

// Params holds the tunable constants of the simulation. A zero field means
// "use the default", so the validation tags reject explicit zeros that
// [Params.WithDefaults] would silently replace.
type Params struct {
	Repulsion   float64 `toml:"repulsion" json:"repulsion" validate:"gt=0"`       // Pairwise repulsion constant
	Attraction  float64 `toml:"attraction" json:"attraction" validate:"gt=0"`     // Edge spring constant
	RestLength  float64 `toml:"rest_length" json:"rest_length" validate:"gt=0"`   // Edge length with zero spring force
	Damping     float64 `toml:"damping" json:"damping" validate:"gt=0,lte=1"`     // Velocity multiplier per tick
	MinDistance float64 `toml:"min_distance" json:"min_distance" validate:"gt=0"` // Repulsion distance floor
	TimeStep    float64 `toml:"time_step" json:"time_step" validate:"gt=0"`       // Integration step
	MaxSpeed    float64 `toml:"max_speed" json:"max_speed" validate:"gt=0"`       // Velocity cap per tick
	Jitter      float64 `toml:"jitter" json:"jitter" validate:"gt=0"`             // Placement jitter radius
	Seed        uint64  `toml:"seed" json:"seed" validate:"gte=1"`                // Jitter generator seed
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{}.WithDefaults()
}

// WithDefaults returns a copy of p with zero values replaced by defaults.
func (p Params) WithDefaults() Params {
	out := p
	if out.Repulsion <= 0 {
		out.Repulsion = DefaultRepulsion
	}
	if out.Attraction <= 0 {
		out.Attraction = DefaultAttraction
	}
	if out.RestLength <= 0 {
		out.RestLength = DefaultRestLength
	}
	if out.Damping <= 0 {
		out.Damping = DefaultDamping
	}
	if out.MinDistance <= 0 {
		out.MinDistance = DefaultMinDistance
	}
	if out.TimeStep <= 0 {
		out.TimeStep = DefaultTimeStep
	}
	if out.MaxSpeed <= 0 {
		out.MaxSpeed = DefaultMaxSpeed
	}
	if out.Jitter <= 0 {
		out.Jitter = DefaultJitter
	}
	if out.Seed == 0 {
		out.Seed = DefaultSeed
	}
	return out
}
