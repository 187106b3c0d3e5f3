package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/platform/metrics"
	"github.com/trackforge/defectcast/internal/platform/timeouts"
	"github.com/trackforge/defectcast/internal/services/forecast/model"
	"github.com/trackforge/defectcast/internal/services/forecast/rayleigh"
	"github.com/trackforge/defectcast/internal/services/forecast/sampler"
)

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	message := "internal error"
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	writeJSON(w, code.HTTPStatus(), errorEnvelope{Code: string(code), Message: message})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorEnvelope{
		Code:    string(apperrors.CodeUnauthorized),
		Message: "missing or invalid credentials",
	})
}

type predictRequest struct {
	Percentile float64 `json:"percentile"`
	Round      int     `json:"round"`
}

type predictResponse struct {
	Sigma           float64   `json:"sigma"`
	Samples         int       `json:"n_samples"`
	MeanSq          float64   `json:"mean_sq"`
	ExpectedDefects float64   `json:"expected_defects"`
	P90             float64   `json:"p90"`
	TrainedAt       time.Time `json:"trained_at"`
	Percentile      float64   `json:"percentile,omitempty"`
	PercentileWeek  float64   `json:"percentile_week,omitempty"`
}

// roundTo rounds to the given number of decimal digits. The /predict
// round parameter defaults to zero, so an unadorned request gets
// whole-number figures.
func roundTo(value float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(value*scale) / scale
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if r.Body != nil {
		// An empty body is a plain stored-model forecast.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			metrics.ForecastRequests.WithLabelValues("predict", "error").Inc()
			writeError(w, apperrors.Wrap(apperrors.CodeFilterInvalid, "malformed request body", err))
			return
		}
	}

	rec, err := model.Load(s.modelPath)
	if err != nil {
		metrics.ForecastRequests.WithLabelValues("predict", "error").Inc()
		writeError(w, err)
		return
	}

	resp := predictResponse{
		Sigma:           roundTo(rec.Sigma, req.Round),
		Samples:         rec.Samples,
		MeanSq:          roundTo(rec.MeanSq, req.Round),
		ExpectedDefects: roundTo(rec.Expected, req.Round),
		P90:             roundTo(rec.P90, req.Round),
		TrainedAt:       rec.TrainedAt,
	}
	if req.Percentile != 0 {
		week, err := rayleigh.Percentile(rec.Sigma, req.Percentile)
		if err != nil {
			metrics.ForecastRequests.WithLabelValues("predict", "error").Inc()
			writeError(w, err)
			return
		}
		resp.Percentile = req.Percentile
		resp.PercentileWeek = roundTo(week, req.Round)
	}
	metrics.ForecastRequests.WithLabelValues("predict", "success").Inc()
	writeJSON(w, http.StatusOK, resp)
}

type weekPoint struct {
	Week       int `json:"week"`
	Defects    int `json:"defects"`
	Cumulative int `json:"cumulative"`
}

type filteredResponse struct {
	Sigma            float64     `json:"sigma"`
	Samples          int         `json:"n_samples"`
	MeanSq           float64     `json:"mean_sq"`
	ExpectedDefects  float64     `json:"expected_defects"`
	P90              float64     `json:"p90"`
	P95              float64     `json:"p95"`
	Weeks            []weekPoint `json:"weeks"`
	ProjectsAnalyzed int         `json:"projects_analyzed"`
	Methodologies    []string    `json:"methodologies"`
	HorizonWeeks     int         `json:"horizon_weeks"`
}

func (s *Server) handlePredictFiltered(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("defectcast/forecast")
	ctx, span := tracer.Start(r.Context(), "forecast.predict_filtered")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, timeouts.ForecastQuery)
	defer cancel()

	var filter sampler.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		metrics.ForecastRequests.WithLabelValues("predict_filtered", "error").Inc()
		writeError(w, apperrors.Wrap(apperrors.CodeFilterInvalid, "malformed filter body", err))
		return
	}

	sample, err := sampler.Extract(ctx, s.tracking, filter)
	if err != nil {
		metrics.ForecastRequests.WithLabelValues("predict_filtered", "error").Inc()
		writeError(w, err)
		return
	}
	summary, err := rayleigh.Summarize(sample.Counts())
	if err != nil {
		metrics.ForecastRequests.WithLabelValues("predict_filtered", "error").Inc()
		writeError(w, err)
		return
	}

	weeks := make([]weekPoint, 0, len(sample.Buckets))
	cumulative := 0
	for week, defects := range sample.Buckets {
		cumulative += defects
		weeks = append(weeks, weekPoint{Week: week, Defects: defects, Cumulative: cumulative})
	}

	metrics.ForecastRequests.WithLabelValues("predict_filtered", "success").Inc()
	writeJSON(w, http.StatusOK, filteredResponse{
		Sigma:            summary.Sigma,
		Samples:          summary.N,
		MeanSq:           summary.MeanSq,
		ExpectedDefects:  summary.Expected,
		P90:              summary.P90,
		P95:              summary.P95,
		Weeks:            weeks,
		ProjectsAnalyzed: sample.Projects,
		Methodologies:    sample.Methodologies,
		HorizonWeeks:     len(sample.Buckets),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
