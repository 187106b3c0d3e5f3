// Package rayleigh implements maximum-likelihood fitting and evaluation
// of the Rayleigh distribution over defect-emergence week offsets.
package rayleigh

import (
	"math"
	"strconv"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Model is a fitted Rayleigh distribution.
type Model struct {
	// Sigma is the maximum-likelihood scale estimate sqrt(sum(x^2)/2n).
	Sigma float64
	// N is the sample count the model was fitted on.
	N int
	// MeanSq is the mean of squared samples.
	MeanSq float64
}

// Fit estimates the Rayleigh scale parameter from samples by maximum
// likelihood. An all-zero sample yields Sigma 0, a degenerate but valid
// model. An empty sample is an error.
func Fit(samples []float64) (Model, error) {
	if len(samples) == 0 {
		return Model{}, apperrors.New(apperrors.CodeSampleEmpty, "rayleigh fit requires at least one sample")
	}
	var sumSq float64
	for _, x := range samples {
		sumSq += x * x
	}
	n := float64(len(samples))
	return Model{
		Sigma:  math.Sqrt(sumSq / (2 * n)),
		N:      len(samples),
		MeanSq: sumSq / n,
	}, nil
}

// ExpectedValue returns the distribution mean sigma*sqrt(pi/2).
func ExpectedValue(sigma float64) float64 {
	return sigma * math.Sqrt(math.Pi/2)
}

// Percentile returns the p-quantile sigma*sqrt(-2*ln(1-p)) for 0 < p < 1.
func Percentile(sigma, p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, apperrors.WithMetadata(apperrors.CodePercentileOutOfRange,
			"percentile must lie strictly between 0 and 1",
			map[string]string{"p": formatFloat(p)})
	}
	return sigma * math.Sqrt(-2*math.Log(1-p)), nil
}

// PDF evaluates the density (x/sigma^2)*exp(-x^2/(2*sigma^2)). It is 0
// for negative x and, for a degenerate sigma, everywhere.
func PDF(sigma, x float64) float64 {
	if sigma <= 0 || x < 0 {
		return 0
	}
	s2 := sigma * sigma
	return (x / s2) * math.Exp(-(x*x)/(2*s2))
}

// CDF evaluates 1-exp(-x^2/(2*sigma^2)), clamped to 0 for negative x.
func CDF(sigma, x float64) float64 {
	if sigma <= 0 || x <= 0 {
		return 0
	}
	return 1 - math.Exp(-(x*x)/(2*sigma*sigma))
}

// LogPDF evaluates the log density, -Inf where the density is 0.
func LogPDF(sigma, x float64) float64 {
	if sigma <= 0 || x <= 0 {
		return math.Inf(-1)
	}
	s2 := sigma * sigma
	return math.Log(x) - math.Log(s2) - (x*x)/(2*s2)
}

// LogLikelihood sums LogPDF over the samples.
func LogLikelihood(sigma float64, samples []float64) float64 {
	var total float64
	for _, x := range samples {
		total += LogPDF(sigma, x)
	}
	return total
}

// Summary bundles a fitted model with the derived statistics the API
// and the training tool expose.
type Summary struct {
	Sigma    float64
	N        int
	MeanSq   float64
	Expected float64
	P90      float64
	P95      float64
}

// Summarize fits the samples and derives expectation and tail
// percentiles in one step.
func Summarize(samples []float64) (Summary, error) {
	model, err := Fit(samples)
	if err != nil {
		return Summary{}, err
	}
	p90, err := Percentile(model.Sigma, 0.90)
	if err != nil {
		return Summary{}, err
	}
	p95, err := Percentile(model.Sigma, 0.95)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Sigma:    model.Sigma,
		N:        model.N,
		MeanSq:   model.MeanSq,
		Expected: ExpectedValue(model.Sigma),
		P90:      p90,
		P95:      p95,
	}, nil
}
