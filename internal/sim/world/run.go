package world

// Run builds a world from cfg, advances it steps ticks and returns the yield
// (stored food). It is the single entry point parameter-search tooling calls.
func Run(cfg WorldConfig, steps int) (int, error) {
	w, err := New(cfg)
	if err != nil {
		return 0, err
	}
	w.StepN(steps)
	return w.StoredFood(), nil
}
