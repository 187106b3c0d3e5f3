package rayleigh

import (
	"math"
	"testing"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestFitEmptySample(t *testing.T) {
	t.Parallel()

	_, err := Fit(nil)
	if apperrors.CodeOf(err) != apperrors.CodeSampleEmpty {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeSampleEmpty)
	}
	_, err = Fit([]float64{})
	if apperrors.CodeOf(err) != apperrors.CodeSampleEmpty {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeSampleEmpty)
	}
}

func TestFitKnownSample(t *testing.T) {
	t.Parallel()

	model, err := Fit([]float64{3, 5, 2})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	want := math.Sqrt(38.0 / 6.0)
	if !almostEqual(model.Sigma, want) {
		t.Fatalf("sigma = %v, want %v", model.Sigma, want)
	}
	if model.N != 3 {
		t.Fatalf("n = %d, want 3", model.N)
	}
	if !almostEqual(model.MeanSq, 38.0/3.0) {
		t.Fatalf("mean sq = %v, want %v", model.MeanSq, 38.0/3.0)
	}
}

func TestFitAllZerosDegenerate(t *testing.T) {
	t.Parallel()

	model, err := Fit([]float64{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if model.Sigma != 0 {
		t.Fatalf("sigma = %v, want 0", model.Sigma)
	}
	if got := ExpectedValue(model.Sigma); got != 0 {
		t.Fatalf("expected value = %v, want 0", got)
	}
	p90, err := Percentile(model.Sigma, 0.9)
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	if p90 != 0 {
		t.Fatalf("p90 = %v, want 0", p90)
	}
}

func TestExpectedValueIdentity(t *testing.T) {
	t.Parallel()

	for _, sigma := range []float64{0.5, 1, 2.5166, 40} {
		want := sigma * math.Sqrt(math.Pi/2)
		if got := ExpectedValue(sigma); !almostEqual(got, want) {
			t.Fatalf("ExpectedValue(%v) = %v, want %v", sigma, got, want)
		}
	}
}

func TestPercentileRange(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{-0.5, 0, 1, 1.5} {
		_, err := Percentile(2, p)
		if apperrors.CodeOf(err) != apperrors.CodePercentileOutOfRange {
			t.Fatalf("Percentile(2, %v) error code = %v, want %v",
				p, apperrors.CodeOf(err), apperrors.CodePercentileOutOfRange)
		}
	}
}

func TestPercentileMonotonic(t *testing.T) {
	t.Parallel()

	const sigma = 3.2
	prev := 0.0
	for p := 0.05; p < 1; p += 0.05 {
		q, err := Percentile(sigma, p)
		if err != nil {
			t.Fatalf("Percentile(%v, %v): %v", sigma, p, err)
		}
		if q <= prev {
			t.Fatalf("quantile not increasing at p=%v: %v then %v", p, prev, q)
		}
		prev = q
	}
}

func TestPercentileInvertsCDF(t *testing.T) {
	t.Parallel()

	const sigma = 2.7
	for _, p := range []float64{0.1, 0.5, 0.9, 0.99} {
		q, err := Percentile(sigma, p)
		if err != nil {
			t.Fatalf("percentile: %v", err)
		}
		if got := CDF(sigma, q); !almostEqual(got, p) {
			t.Fatalf("CDF(sigma, q(%v)) = %v, want %v", p, got, p)
		}
	}
}

func TestPDFIntegratesViaCDF(t *testing.T) {
	t.Parallel()

	// Trapezoidal integral of the density should track the CDF closely.
	const sigma = 1.8
	const step = 1e-4
	var integral float64
	for x := 0.0; x < 5; x += step {
		integral += step * (PDF(sigma, x) + PDF(sigma, x+step)) / 2
		want := CDF(sigma, x+step)
		if math.Abs(integral-want) > 1e-4 {
			t.Fatalf("integral at %v = %v, CDF = %v", x+step, integral, want)
		}
	}
}

func TestLogPDFMatchesPDF(t *testing.T) {
	t.Parallel()

	const sigma = 2.2
	for _, x := range []float64{0.1, 1, 3, 7} {
		if got, want := LogPDF(sigma, x), math.Log(PDF(sigma, x)); !almostEqual(got, want) {
			t.Fatalf("LogPDF(%v) = %v, want %v", x, got, want)
		}
	}
	if got := LogPDF(sigma, 0); !math.IsInf(got, -1) {
		t.Fatalf("LogPDF at 0 = %v, want -Inf", got)
	}
}

func TestLogLikelihoodPeaksAtMLE(t *testing.T) {
	t.Parallel()

	samples := []float64{1, 2, 2, 3, 5, 8}
	model, err := Fit(samples)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	at := LogLikelihood(model.Sigma, samples)
	for _, sigma := range []float64{model.Sigma * 0.8, model.Sigma * 1.2} {
		if LogLikelihood(sigma, samples) >= at {
			t.Fatalf("likelihood at sigma=%v not below MLE value", sigma)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary, err := Summarize([]float64{3, 5, 2})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	sigma := math.Sqrt(38.0 / 6.0)
	if !almostEqual(summary.Sigma, sigma) {
		t.Fatalf("sigma = %v, want %v", summary.Sigma, sigma)
	}
	if !almostEqual(summary.Expected, sigma*math.Sqrt(math.Pi/2)) {
		t.Fatalf("expected = %v", summary.Expected)
	}
	if !almostEqual(summary.P90, sigma*math.Sqrt(-2*math.Log(0.1))) {
		t.Fatalf("p90 = %v", summary.P90)
	}
	if summary.P95 <= summary.P90 {
		t.Fatalf("p95 = %v not above p90 = %v", summary.P95, summary.P90)
	}
}
