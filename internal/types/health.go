package types

// HealthStatus is the basic health payload of the service.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Services  map[string]string `json:"services,omitempty"`
}

// Healthy reports whether the service declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && (h.Status == "healthy" || h.Status == "ok")
}
