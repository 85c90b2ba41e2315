package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: failed to parse REDIS_URL")
	ErrRedisNotReady                = errors.New("redis: server did not answer before the retries ran out")
	ErrEmptyConnectionURL           = errors.New("redis: empty connection URL, set REDIS_URL")
	ErrHealthcheckFailed            = errors.New("redis: ping failed")
)
