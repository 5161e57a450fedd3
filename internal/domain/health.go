package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// DashboardMetrics is returned by GET /v1/metrics/dashboard.
type DashboardMetrics struct {
	RoundsApplied      int64   `json:"roundsApplied"`
	RoundsFailed       int64   `json:"roundsFailed"`
	RoundsDiscarded    int64   `json:"roundsDiscarded"`
	RoundErrorRate     float64 `json:"roundErrorRate"`
	ProfileWrites      int64   `json:"profileWrites"`
	ProfileWriteErrors int64   `json:"profileWriteErrors"`
	TransfersCompleted int64   `json:"transfersCompleted"`
	TransfersCancelled int64   `json:"transfersCancelled"`
	ValidationFailures int64   `json:"validationFailures"`
	Period             string  `json:"period"`
}
