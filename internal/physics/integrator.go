package physics

import "math"

// Integrate advances b by dt under downward gravity.
// Gravity is applied in two half steps around the position update, which
// keeps the trajectory on the closed-form parabola for constant dt.
func Integrate(b *Body, gravity, dt float64) {
	half := gravity * dt / 2
	b.Velocity.Y += half
	b.Center = b.Center.Plus(b.Velocity.Times(dt))
	b.Velocity.Y += half
}

// PrimaryGravity returns the gravity felt by the main ball with n live projectiles.
// Above GravityThreshold projectiles it grows by GravityMultiplier per projectile.
func PrimaryGravity(base float64, n int) float64 {
	if n <= GravityThreshold {
		return base
	}
	return base * math.Pow(GravityMultiplier, float64(n-GravityThreshold))
}
