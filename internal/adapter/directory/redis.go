package directory

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	employeeKeyPrefix = "directory:employee:"
	assetKeyPrefix    = "directory:asset:"
	nameField         = "name"
)

// RedisDirectory reads display names from the HR master-data mirror kept in Redis hashes.
// A missing hash or field is not an error: the name is simply unknown.
type RedisDirectory struct{ rdb *redis.Client }

func NewRedisDirectory(rdb *redis.Client) *RedisDirectory { return &RedisDirectory{rdb: rdb} }

func (d *RedisDirectory) EmployeeName(ctx context.Context, ref string) (string, error) {
	return d.name(ctx, employeeKeyPrefix+ref)
}

func (d *RedisDirectory) AssetName(ctx context.Context, ref string) (string, error) {
	return d.name(ctx, assetKeyPrefix+ref)
}

func (d *RedisDirectory) name(ctx context.Context, key string) (string, error) {
	v, err := d.rdb.HGet(ctx, key, nameField).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
