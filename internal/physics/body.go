package physics

// Body is a circle taking part in the simulation.
type Body struct {
	Center   Vec2    `json:"center" msgpack:"center"`
	Velocity Vec2    `json:"velocity" msgpack:"velocity"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Mass     float64 `json:"mass" msgpack:"mass"`
	Live     bool    `json:"live" msgpack:"live"`
}

// NewProjectile creates a live projectile at pos moving along dir at LaunchSpeed.
// dir is expected to be a unit vector.
func NewProjectile(pos, dir Vec2) Body {
	return Body{
		Center:   pos,
		Velocity: dir.Times(LaunchSpeed),
		Radius:   ProjectileRadius,
		Mass:     ProjectileMass,
		Live:     true,
	}
}

// NewPrimary creates the main ball at its spawn point in the middle of the field.
func NewPrimary(f Field) Body {
	return Body{
		Center:   Vec2{X: f.Width / 2, Y: f.Height / 2},
		Velocity: Vec2{X: 0, Y: PrimarySpawnSpeedY},
		Radius:   PrimaryRadius,
		Mass:     PrimaryMass,
		Live:     true,
	}
}

// Below reports whether the body has fallen fully out of a field of the given height.
func (b *Body) Below(height float64) bool {
	return b.Center.Y > height+b.Radius
}
