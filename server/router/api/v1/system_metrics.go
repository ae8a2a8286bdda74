package v1

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nutribot/server/internal/observability"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalRequests int64           `json:"total_requests"`
	SuccessRate   float64         `json:"success_rate"`
	AvgLatencyMs  int64           `json:"avg_latency_ms"`
	P50LatencyMs  int64           `json:"p50_latency_ms"`
	P95LatencyMs  int64           `json:"p95_latency_ms"`
	ErrorCount    int64           `json:"error_count"`
	Models        []ModelOverview `json:"models"`
}

// ModelOverview is the per-model part of MetricsOverviewResponse.
type ModelOverview struct {
	Model        string `json:"model"`
	RequestCount int64  `json:"request_count"`
	ErrorCount   int64  `json:"error_count"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

// GetMetricsOverview returns model call metrics since process start.
// GET /api/system/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	if s.Metrics == nil {
		return c.JSON(http.StatusOK, MetricsOverviewResponse{Models: []ModelOverview{}})
	}
	return c.JSON(http.StatusOK, overviewFromSnapshot(s.Metrics.Snapshot()))
}

func overviewFromSnapshot(snap *observability.MetricsSnapshot) MetricsOverviewResponse {
	resp := MetricsOverviewResponse{
		TotalRequests: snap.RequestTotal,
		SuccessRate:   snap.SuccessRate(),
		P50LatencyMs:  snap.P50LatencyMs,
		P95LatencyMs:  snap.P95LatencyMs,
		ErrorCount:    snap.RequestFailed,
		Models:        make([]ModelOverview, 0, len(snap.Models)),
	}

	// Overall average is weighted by each model's request count.
	var weighted, count int64
	for id, m := range snap.Models {
		resp.Models = append(resp.Models, ModelOverview{
			Model:        id,
			RequestCount: m.RequestCount,
			ErrorCount:   m.ErrorCount,
			AvgLatencyMs: m.AvgLatencyMs,
		})
		weighted += m.AvgLatencyMs * m.RequestCount
		count += m.RequestCount
	}
	if count > 0 {
		resp.AvgLatencyMs = weighted / count
	}
	sort.Slice(resp.Models, func(i, j int) bool {
		return resp.Models[i].Model < resp.Models[j].Model
	})
	return resp
}
