package redis

import backend "github.com/redis/go-redis/v9"

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "dumpling:"

// NewClient creates a go-redis client for the given server. The store, the
// locker and the recorder can share it.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}
