// Package dsp holds the filter, window, and spectral-estimation primitives
// shared by the analyzers. It is a deliberately small, scalar subset of a
// general DSP toolkit: one-shot offline analysis does not need streaming
// state management or vectorized filter kernels.
package dsp

// Coefficients holds the transfer function of a single second-order section
// (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Section is a single biquad with coefficients and internal state.
type Section struct {
	Coefficients

	d0, d1 float64
}

// NewSection returns a Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters a block of samples in place.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the section state.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// Chain is an ordered cascade of biquad sections processed in series. Higher
// order filters (Butterworth cascades, bandpass pairs) are built from it.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade from one or more coefficient sets.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// Append adds further sections to the cascade.
func (c *Chain) Append(coeffs []Coefficients) {
	for _, co := range coeffs {
		c.sections = append(c.sections, Section{Coefficients: co})
	}
}

// ProcessSample cascades one input sample through all sections in order.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters a block in place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Order returns the total filter order: 2 per full biquad section, 1 for
// a first-order section (zero second-order coefficients).
func (c *Chain) Order() int {
	order := 0

	for i := range c.sections {
		if c.sections[i].B2 == 0 && c.sections[i].A2 == 0 {
			order++
		} else {
			order += 2
		}
	}

	return order
}
