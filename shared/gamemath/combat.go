package gamemath

// BulletVelocity returns the velocity of a bullet fired from origin toward
// target at the given speed. A target equal to origin yields zero velocity.
func BulletVelocity(origin, target Vec, speed float64) Vec {
	return target.Sub(origin).Normalize().Scale(speed)
}

// MuzzleOffset pushes the spawn point forward along the bullet velocity by
// fraction of its length, so the bullet starts just outside the weapon.
func MuzzleOffset(velocity Vec, fraction float64) Vec {
	return velocity.ClampLen(velocity.Len() * fraction)
}

// SwingForce returns the force that swings a hooked player around anchor.
// The force is perpendicular to the rope and scaled by the horizontal input.
func SwingForce(position, anchor Vec, input, strength float64) Vec {
	dir := anchor.Sub(position).Normalize()
	return dir.Perp().Scale(input * strength)
}
