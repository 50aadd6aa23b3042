package ioc

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

func InitRedis() *redis.Client {
	type Config struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	cfg := Config{Addr: "localhost:6379"}
	if err := unmarshalKey("redis", &cfg); err != nil {
		panic(err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(err)
	}
	return client
}
