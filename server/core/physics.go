package core

// updatePhysics advances every player body by dt seconds, split into
// Physics.SubSteps equal slices.
func (sc *Scene) updatePhysics(dt float64) {
	steps := sc.cfg.Physics.SubSteps
	if steps < 1 {
		steps = 1
	}
	sub := dt / float64(steps)

	for step := 0; step < steps; step++ {
		for _, pe := range sc.players {
			pe.body.step(sub)
		}
	}
}
