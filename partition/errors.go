package partition

import "errors"

// All the errors related to partitioners
var (
	ErrUnknownPartitioner = errors.New("unknown partitioner")
)
