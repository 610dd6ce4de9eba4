package dedupe

type config struct {
	capacity int
}

// Option configures a Keeper.
type Option func(*config)

// WithCapacity presizes the keeper for n distinct keys.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}
