package dedupe

// Option applies a configuration option to the in-memory key set.
type Option func(*inMemoryKeySet)

// WithCapacity presizes the set, typically to the row count of the
// batch being loaded.
func WithCapacity(n int) Option {
	return func(s *inMemoryKeySet) {
		s.capacity = n
	}
}
