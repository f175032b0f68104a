package replication

import "errors"

// All the errors related to replication strategies
var (
	ErrUnknownStrategy = errors.New("unknown replication strategy")
)
