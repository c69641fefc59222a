// Package redis provides connection plumbing for the Redis-backed
// subscription registry: URL-based configuration, startup retry, and a
// health-check closure on the go-redis/v9 client.
//
// # Usage
//
//	var cfg redis.Config
//	// populate from the environment, e.g. with caarlos0/env
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := push.NewRedisStore(client)
package redis
