package dsp

import "math"

// DefaultQ is the quality factor of a maximally flat second-order section.
const DefaultQ = 1 / math.Sqrt2

// normalizedW0 converts freq to the normalized angular frequency, rejecting
// frequencies outside (0, Nyquist).
func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return DefaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 - cw) / 2
	b1 := 1 - cw
	b2 := (1 - cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := (1 + cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs an RBJ high-shelving biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// butterworthQ returns the quality factor of section index in an order-N
// Butterworth cascade. index ranges over [0, order/2).
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return DefaultQ
	}

	return 1 / (2 * s)
}

func butterworthFirstOrder(freq, sampleRate float64, highpass bool) Coefficients {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return Coefficients{}
	}

	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	if highpass {
		return Coefficients{B0: norm, B1: -norm, A1: (k - 1) * norm}
	}

	return Coefficients{B0: k * norm, B1: k * norm, A1: (k - 1) * norm}
}

// ButterworthLP designs a lowpass Butterworth cascade of the given order.
// For odd orders the final section is first-order.
func ButterworthLP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 {
		return nil
	}

	sections := make([]Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, Lowpass(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, butterworthFirstOrder(freq, sampleRate, false))
	}

	return sections
}

// ButterworthHP designs a highpass Butterworth cascade of the given order.
// For odd orders the final section is first-order.
func ButterworthHP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 {
		return nil
	}

	sections := make([]Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, Highpass(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, butterworthFirstOrder(freq, sampleRate, true))
	}

	return sections
}

// ButterworthBandpass designs a bandpass as a highpass cascade at lowHz
// followed by a lowpass cascade at highHz, each of the given order.
func ButterworthBandpass(lowHz, highHz float64, order int, sampleRate float64) *Chain {
	chain := NewChain(ButterworthHP(lowHz, order, sampleRate))
	chain.Append(ButterworthLP(highHz, order, sampleRate))

	return chain
}
