package scoring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTolerance sets the decay tolerance in degrees.
func WithTolerance(deg float64) Option {
	return func(e *Engine) {
		if deg > 0 {
			e.tolerance = deg
		}
	}
}
