package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ClientMetrics is returned by GET /v1/metrics/client.
type ClientMetrics struct {
	CartMutations     float64 `json:"cartMutations"`
	SessionTeardowns  float64 `json:"sessionTeardowns"`
	TenantMismatches  float64 `json:"tenantMismatches"`
	OrderPolls        float64 `json:"orderPolls"`
	OrderPollFailures float64 `json:"orderPollFailures"`
	BackendErrors     float64 `json:"backendErrors"`
	CacheHitRate      float64 `json:"cacheHitRate"`
}
