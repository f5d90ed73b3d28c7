package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BlockAverage splits x into nblocks equal blocks, dropping the remainder
// from the front, and returns the mean of the retained samples and the
// standard error of the block means.
func BlockAverage(x []float64, nblocks int) (mean, stderr float64, err error) {
	if nblocks < 2 {
		return 0, 0, fmt.Errorf("analysis: need at least 2 blocks, got %d", nblocks)
	}
	size := len(x) / nblocks
	if size < 1 {
		return 0, 0, ErrShortSeries
	}

	x = x[len(x)-size*nblocks:]
	means := make([]float64, nblocks)
	for b := range means {
		means[b] = stat.Mean(x[b*size:(b+1)*size], nil)
	}

	mean, std := stat.MeanStdDev(means, nil)
	return mean, std / math.Sqrt(float64(nblocks)), nil
}

type Summary struct {
	Samples     int
	Mean        float64
	StdDev      float64
	Tau         float64
	Effective   float64
	NaiveStdErr float64
	BlockStdErr float64
}

// Summarize reports the statistics of x. Block error is left at zero when
// x is too short for nblocks.
func Summarize(x []float64, nblocks int) (Summary, error) {
	if len(x) < 2 {
		return Summary{}, ErrShortSeries
	}

	var s Summary
	s.Samples = len(x)
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	s.NaiveStdErr = s.StdDev / math.Sqrt(float64(len(x)))

	tau, err := IntegratedTime(x)
	if err != nil {
		return Summary{}, err
	}
	s.Tau = tau
	s.Effective = float64(len(x)) / tau

	if _, stderr, err := BlockAverage(x, nblocks); err == nil {
		s.BlockStdErr = stderr
	}
	return s, nil
}
