package component

// Overall folds several health reports into one status: unhealthy if any
// report is unhealthy, degraded if any is degraded, healthy otherwise.
func Overall(reports []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range reports {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
