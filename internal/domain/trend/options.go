package trend

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithTimeConstants overrides the chronic and acute time constants in days.
func WithTimeConstants(ctlDays, atlDays float64) Option {
	return func(a *Accumulator) {
		if ctlDays >= 1 {
			a.ctlDays = ctlDays
		}
		if atlDays >= 1 {
			a.atlDays = atlDays
		}
	}
}

// WithSeed starts the fold from a prior CTL and ATL.
func WithSeed(ctl, atl float64) Option {
	return func(a *Accumulator) {
		a.seedCTL = ctl
		a.seedATL = atl
	}
}
