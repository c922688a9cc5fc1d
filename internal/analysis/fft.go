package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform; len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns |X[k]|^2 for the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		re, im := real(fft[i]), imag(fft[i])
		ps[i] = re*re + im*im
	}

	return ps
}

func NextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// DominantFrequency returns the strongest non-DC frequency (Hz) in a signal
// sampled every dt seconds, together with its share of the total non-DC
// power. The mean is removed and the signal zero-padded to a power of two.
func DominantFrequency(signal []float64, dt float64) (freq, share float64) {
	if len(signal) < 2 || dt <= 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(len(signal))

	n := NextPow2(len(signal))
	padded := make([]float64, n)
	for i, v := range signal {
		padded[i] = v - mean
	}

	ps := PowerSpectrum(padded)

	total, maxPower, maxIdx := 0.0, 0.0, 0
	for i := 1; i < len(ps); i++ {
		total += ps[i]
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if total == 0 {
		return 0, 0
	}

	return float64(maxIdx) / (float64(n) * dt), maxPower / total
}
