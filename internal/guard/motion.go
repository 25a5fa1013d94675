package guard

// pursue heads straight for the target. The destination is re-issued every
// tick so the navigator follows a moving target.
func (a *Agent) pursue() {
	a.nav.SetDestination(a.target.Position())
	a.lastHeading = a.Facing()
	a.mode = ModePursue
}

// patrol keeps walking along the last known heading.
func (a *Agent) patrol() {
	a.nav.SetDestination(a.transform.Position().Add(a.lastHeading))
	a.mode = ModePatrol
}
