package physics

// fallbackDir separates two bodies whose centers coincide exactly.
var fallbackDir = Vec2{X: 1, Y: 0}

// Resolve applies a mass-weighted impulse to two overlapping circles and
// reports whether they overlapped. Only velocities change: overlap is worked
// out over the following frames rather than by moving the centers.
func Resolve(a, b *Body) bool {
	radiusSum := a.Radius + b.Radius
	if a.Center.DistanceSquared(b.Center) >= radiusSum*radiusSum {
		return false
	}

	distance := a.Center.Distance(b.Center)
	penetration := distance - radiusSum // <= 0

	dir := fallbackDir
	if distance > 0 {
		dir = a.Center.Minus(b.Center).Times(1 / distance)
	}

	totalMass := a.Mass + b.Mass
	a.Velocity = a.Velocity.Minus(dir.Times(penetration * (totalMass / a.Mass) * ImpulseScale))
	b.Velocity = b.Velocity.Plus(dir.Times(penetration * (totalMass / b.Mass) * ImpulseScale))
	return true
}

// ResolveAgainst resolves every live body in bodies against target.
// It returns the number of bodies that were in contact.
func ResolveAgainst(bodies []Body, target *Body) int {
	hits := 0
	for i := range bodies {
		if !bodies[i].Live {
			continue
		}
		if Resolve(&bodies[i], target) {
			hits++
		}
	}
	return hits
}

// ResolvePairs resolves every unordered pair of live bodies exactly once,
// visiting (i, j) with i < j in row order. It returns the number of
// contacts.
func ResolvePairs(bodies []Body) int {
	hits := 0
	for i := 0; i < len(bodies); i++ {
		if !bodies[i].Live {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			if !bodies[j].Live {
				continue
			}
			if Resolve(&bodies[i], &bodies[j]) {
				hits++
			}
		}
	}
	return hits
}
