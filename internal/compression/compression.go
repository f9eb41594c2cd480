// Package compression compresses queue payloads.
package compression

import (
	"fmt"
	"strings"
)

// Algorithm identifies a compression algorithm
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm resolves a configured algorithm name. An empty name is None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// Compressor compresses and decompresses payloads
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return NoneCompressor{}, nil
	case Snappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algo)
	}
}

// New returns the compressor for a configured algorithm name
func New(name string) (Compressor, error) {
	algo, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return GetCompressor(algo)
}

// NoneCompressor passes data through unchanged
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoneCompressor) Algorithm() Algorithm {
	return None
}
