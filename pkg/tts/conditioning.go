package tts

// Conditioning steers a backend's output toward a particular voice or
// style. At most one field group should be set; the zero value means "no
// conditioning". How the value is interpreted is up to the model family:
// presets name provider-defined voices, vectors are speaker embeddings,
// and Named carries keyed prompt bundles for families like bark.
type Conditioning struct {
	// Preset names a provider-defined voice preset (e.g. "v2/en_speaker_1").
	Preset string

	// Presets carries one preset per batched input text.
	Presets []string

	// Vector is a single speaker-embedding vector.
	Vector []float32

	// Vectors carries one embedding vector per batched input text.
	Vectors [][]float32

	// Named maps prompt component names to arrays, for families whose
	// conditioning is a keyed bundle rather than a single vector.
	Named map[string][]float32
}

// IsZero reports whether no conditioning is set.
func (c Conditioning) IsZero() bool {
	return c.Preset == "" && len(c.Presets) == 0 && len(c.Vector) == 0 &&
		len(c.Vectors) == 0 && len(c.Named) == 0
}

// BatchLen returns the number of stacked conditioning values. Scalar forms
// (single preset, single vector, named bundle) report 1; the zero value
// reports 0.
func (c Conditioning) BatchLen() int {
	switch {
	case len(c.Presets) > 0:
		return len(c.Presets)
	case len(c.Vectors) > 0:
		return len(c.Vectors)
	case c.IsZero():
		return 0
	default:
		return 1
	}
}

// First narrows batched conditioning to its first element. Scalar forms are
// returned unchanged. Families that accept a single conditioning value per
// generation call use this to avoid shape mismatches when the text batch is
// larger than one; note this drops conditioning for every input but the
// first.
func (c Conditioning) First() Conditioning {
	switch {
	case len(c.Presets) > 0:
		return Conditioning{Preset: c.Presets[0]}
	case len(c.Vectors) > 0:
		return Conditioning{Vector: c.Vectors[0]}
	default:
		return c
	}
}
