// Package config loads environment-tagged configuration structs with
// caching, so every component reads its settings the same way: declare a
// struct with `env` tags, call Load once at startup, pass the value down
// explicitly. A local .env file is honored in development via godotenv.
//
// The engine's configuration surfaces (push.VAPIDConfig, pg.Config,
// redis.Config) are all designed for this loader.
package config
