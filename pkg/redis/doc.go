// Package redis connects to Redis through go-redis/v9.
//
// Connect retries the initial ping within ConnectTimeout, and Healthcheck
// returns a readiness probe. The session store builds on the returned client.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
