package secondary

import "context"

// HealthChecker defines the secondary port for probing a backing service
// (record store, event broker) from the health endpoint.
type HealthChecker interface {
	// Name returns the name of the dependency being checked.
	Name() string

	// Check probes the dependency and returns an error if it is unreachable.
	Check(ctx context.Context) error
}
