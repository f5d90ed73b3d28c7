package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// windowFactor is the Sokal window constant: the sum stops at the first lag
// M with M >= windowFactor*tau(M).
const windowFactor = 5

// Autocorrelation returns rho(0..maxLag) of x, normalized so rho(0) = 1. A
// constant series has rho(k) = 0 for k > 0.
func Autocorrelation(x []float64, maxLag int) ([]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, ErrShortSeries
	}
	if maxLag <= 0 || maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(x, nil)
	size := nextPow2(2 * n)
	padded := make([]float64, size)
	for i, v := range x {
		padded[i] = v - mean
	}

	fft := fourier.NewFFT(size)
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	acov := fft.Sequence(nil, coeff)

	rho := make([]float64, maxLag+1)
	rho[0] = 1
	if acov[0] <= 0 {
		return rho, nil
	}
	for k := 1; k <= maxLag; k++ {
		rho[k] = acov[k] / acov[0]
	}
	return rho, nil
}

// IntegratedTime returns tau = 1 + 2*sum(rho(k)) over a self-consistent
// window. Uncorrelated samples give tau close to 1.
func IntegratedTime(x []float64) (float64, error) {
	rho, err := Autocorrelation(x, 0)
	if err != nil {
		return 0, err
	}

	tau := 1.0
	for m := 1; m < len(rho); m++ {
		tau += 2 * rho[m]
		if float64(m) >= windowFactor*tau {
			break
		}
	}
	return math.Max(tau, 1), nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
