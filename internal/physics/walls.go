package physics

// Field is the play-field rectangle. Walls of Thickness line the left, right
// and top edges; there is no floor.
type Field struct {
	Width     float64 `json:"width" msgpack:"width"`
	Height    float64 `json:"height" msgpack:"height"`
	Thickness float64 `json:"thickness" msgpack:"thickness"`
}

// DefaultField returns the standard 800x600 field.
func DefaultField() Field {
	return Field{Width: FieldWidth, Height: FieldHeight, Thickness: WallThickness}
}

// Valid reports whether a body of radius r still has room to travel horizontally.
func (f Field) Valid(r float64) bool {
	return f.Width-2*(f.Thickness+r) >= 0 && f.Height > 0
}

// WallHits reports which walls a body touched during one reflection pass.
type WallHits struct {
	Ceiling bool
	Right   bool
	Left    bool
}

// Any reports whether any wall was hit.
func (h WallHits) Any() bool {
	return h.Ceiling || h.Right || h.Left
}

// ReflectWalls clamps b into the field and inverts the velocity component
// normal to each wall it crossed. Checks run ceiling, right, left.
func ReflectWalls(b *Body, f Field) WallHits {
	var hits WallHits

	if top := b.Radius + f.Thickness; b.Center.Y < top {
		b.Velocity.Y = -b.Velocity.Y
		b.Center.Y = top
		hits.Ceiling = true
	}

	if right := f.Width - b.Radius - f.Thickness; b.Center.X > right {
		b.Velocity.X = -b.Velocity.X
		b.Center.X = right
		hits.Right = true
	}

	if left := b.Radius + f.Thickness; b.Center.X < left {
		b.Velocity.X = -b.Velocity.X
		b.Center.X = left
		hits.Left = true
	}

	return hits
}
