package model

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// Health is the dependency report served by /healthz. Postgres is required;
// the other components only degrade the status.
type Health struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
