package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"livegate.io/infrastructure/logger"
)

type RedisClient struct {
	Client *redis.Client
}

var instance *RedisClient

func ConnectToCache() {
	opt := &redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
		PoolSize: 10,
	}
	instance = &RedisClient{Client: redis.NewClient(opt)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := instance.Client.Ping(ctx).Err(); err != nil {
		logger.Warning("could not reach redis", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	logger.Info("connected to redis successfully")
}

func GetInstance() (*RedisClient, error) {
	if instance == nil {
		ConnectToCache()
	}
	return instance, nil
}
