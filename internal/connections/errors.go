package connections

import "fmt"

// Kind names one of the managed dependency kinds.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindRedis    Kind = "redis"
	KindKafka    Kind = "kafka"
)

// UnavailableError reports that establishing a connection of the given kind
// exhausted all retry attempts. Err holds the last attempt's error.
type UnavailableError struct {
	Kind Kind
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Kind, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
