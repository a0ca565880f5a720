package cache

import (
	"context"

	"ctf_practice_hub/internal/platform/config"
	"ctf_practice_hub/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		logger.Log.Fatal("could not connect to Redis", zap.Error(err))
	}
	logger.Log.Info("connected to Redis")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		logger.Log.Info("redis connection closed")
	}
}
