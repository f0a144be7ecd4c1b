package scoring

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithAccuracyScale sets how incoming accuracy values are read.
func WithAccuracyScale(scale AccuracyScale) Option {
	return func(b *Builder) {
		if scale == ScalePercent || scale == ScaleFraction {
			b.scale = scale
		}
	}
}
