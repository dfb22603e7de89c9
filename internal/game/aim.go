package game

import (
	"math"

	"github.com/playmatatu/walltowall/internal/physics"
)

// Aim is the cannon direction. Angle is the rotation of the barrel from
// straight down, as used by renderers.
type Aim struct {
	Dir   physics.Vec2 `json:"dir" msgpack:"dir"`
	Angle float64      `json:"angle" msgpack:"angle"`
}

// DefaultAim points straight up out of the cannon.
func DefaultAim() Aim {
	return Aim{Dir: physics.NewVec2(0, -1), Angle: math.Pi}
}

// AimAt aims from the cannon toward the pointer. A pointer sitting on the
// cannon keeps the default aim.
func AimAt(cannon, pointer physics.Vec2) Aim {
	d := pointer.Minus(cannon)
	if d.IsZero() {
		return DefaultAim()
	}
	dir := d.Normalize()
	angle := math.Atan2(-dir.X, dir.Y)
	if angle <= -math.Pi {
		// -0 on the x axis; keep straight up at +Pi
		angle = math.Pi
	}
	return Aim{Dir: dir, Angle: angle}
}

// valid reports whether the aim carries a direction.
func (a Aim) valid() bool {
	return !a.Dir.IsZero() && a.Dir.IsFinite()
}

// CannonPosition is the bottom-center of the field.
func CannonPosition(f physics.Field) physics.Vec2 {
	return physics.NewVec2(f.Width/2, f.Height)
}
