package synth

import "math"

type partial struct {
	mul     int
	div     int
	shifted bool
}

// Partials of the tone colour: frequency multiple, volume divisor and
// whether the sample index is offset by half the output rate.
var partials = [...]partial{
	{mul: 1, div: 2},
	{mul: 2, div: 4, shifted: true},
	{mul: 3, div: 8},
	{mul: 5, div: 16, shifted: true},
	{mul: 8, div: 32},
	{mul: 13, div: 32, shifted: true},
}

// Sine returns sin(i*π*freq/rate)*volume truncated toward zero. The argument
// uses π, not 2π.
func Sine(freq, rate, i, volume int) int {
	return int(math.Sin(float64(i)*math.Pi*float64(freq)/float64(rate)) * float64(volume))
}

// Harmonic sums six weighted partials of freq at sample index i. Each partial
// is truncated on its own before summing. freq 0 yields 0.
func Harmonic(freq, rate, i, volume int) int {
	sum := 0
	for _, p := range partials {
		idx := i
		if p.shifted {
			idx += rate / 2
		}
		sum += Sine(freq*p.mul, rate, idx, volume/p.div)
	}
	return sum
}

// Envelope holds volume for the first two thirds of n samples, then decays
// linearly with slope 4/3. Every division truncates where it appears. The
// decay crosses zero near i = 17n/12; later indexes stay at 0.
func Envelope(n, i, volume int) int {
	if n <= 0 {
		return 0
	}
	drop := 0
	if i >= n*2/3 {
		drop = (i - n*2/3) * 4 / 3
	}
	if drop >= n {
		return 0
	}
	return volume * (n - drop) / n
}
