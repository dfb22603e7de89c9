package physics

// Gameplay tuning. Distances are field pixels, time is seconds.
const (
	WallThickness = 30.0
	FieldWidth    = 800.0
	FieldHeight   = 600.0

	Gravity            = 70.0
	GravityMultiplier  = 1.5 // applied per projectile above GravityThreshold
	GravityThreshold   = 4
	PrimaryRadius      = 50.0
	PrimaryMass        = 2.0
	PrimarySpawnSpeedY = -3.0

	ProjectileRadius = 20.0
	ProjectileMass   = 0.7
	LaunchSpeed      = 700.0

	// impulse gain on penetration depth
	ImpulseScale = 2.0
)
