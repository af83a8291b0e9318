// Package redis connects to the Redis server used for cross-instance
// checkout locking.
//
// Config is populated from the environment (REDIS_URL, REDIS_KEY_PREFIX,
// REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL, REDIS_CONNECT_TIMEOUT) and
// Connect pings the server with retries before handing out the client:
//
//	client, err := redis.Connect(ctx, cfg.Redis, log)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
