// Package mock provides a deterministic embedder for tests: no model
// files, no network. Vectors are derived from the text bytes, so equal
// texts embed identically and different texts usually do not.
package mock

import "context"

// Embedder implements memory.Embedder with hash-derived vectors.
type Embedder struct {
	dims int
}

// New creates a mock embedder producing vectors of the given dimension.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = 8
	}
	return &Embedder{dims: dims}
}

// Embed derives a pseudo-embedding from the text content.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	var h uint32 = 2166136261
	for i := 0; i < len(text); i++ {
		h ^= uint32(text[i])
		h *= 16777619
		vec[i%e.dims] += float32(h%997) / 997
	}
	return vec, nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dims }
