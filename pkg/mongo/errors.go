package mongo

import "errors"

var (
	// ErrFailedToConnectToMongo is returned once every connection attempt
	// is exhausted.
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	// ErrHealthcheckFailed wraps ping failures from the health probe.
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)
