package repository

import (
	"os"

	"github.com/parquet-go/parquet-go/compress"
)

// Option applies a configuration option to the ParquetStore.
type Option func(*ParquetStore)

// WithCompression sets the page compression codec. Defaults to Snappy.
func WithCompression(c compress.Codec) Option {
	return func(s *ParquetStore) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithFileMode sets the permissions of written batch files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *ParquetStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}
