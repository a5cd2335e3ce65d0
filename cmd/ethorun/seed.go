package main

import (
	"fmt"

	redis "github.com/go-redis/redis/v7"
	"github.com/rhizome-labs/ethogram"
)

// seedFromRedis reads every field of the Redis hash at key and sets
// each one as a literal value on bb, giving an operator a way to seed
// a run's starting blackboard values from outside the process without
// the engine itself depending on Redis for anything persistent — the
// tree never reads or writes back to Redis once ticking starts.
func seedFromRedis(bb *ethogram.Blackboard, addr, key string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	fields, err := client.HGetAll(key).Result()
	if err != nil {
		return fmt.Errorf("ethorun: reading redis seed hash %q: %w", key, err)
	}

	for field, value := range fields {
		bb.SetLiteral(field, value)
	}
	return nil
}
