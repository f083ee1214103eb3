package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toorak_vpn/internal/config"
	"toorak_vpn/internal/protector"
	"toorak_vpn/internal/repository/record"
	redisSvc "toorak_vpn/internal/service/redis"
	"toorak_vpn/internal/service/router"
	"toorak_vpn/internal/service/server"
	"toorak_vpn/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("TOORAK_CONFIG"), "path to TOML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		log.Fatal("init logger failed", zap.Error(err))
	}
	defer log.Sync()

	keys, err := cfg.TierKeys()
	if err != nil {
		log.Fatal("load tier keys failed", zap.Error(err))
	}
	p, err := protector.NewProtector(keys, cfg.ProtectorOptions())
	if err != nil {
		log.Fatal("init protector failed", zap.Error(err))
	}

	var store router.RecordStore = record.NewMemoryRepo()
	if cfg.Mongo.Enabled {
		mongoDBClient, err := initMongo(cfg.Mongo.URI)
		if err != nil {
			log.Fatal("connect mongo failed", zap.Error(err))
		}
		defer mongoDBClient.Disconnect(context.Background())

		repo := record.NewRecordRepo(mongoDBClient.Database(cfg.Mongo.Database))
		if err := repo.EnsureIndexes(context.Background()); err != nil {
			log.Fatal("create record indexes failed", zap.Error(err))
		}
		store = repo
	}

	var queue router.RouteQueue = router.NewMemoryQueue()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		redisService := redisSvc.NewRedis(rdb)
		if err := redisService.Ping(context.Background()); err != nil {
			log.Fatal("connect redis failed", zap.Error(err))
		}
		queue = redisService
	}

	rt := router.NewRouter(p, store, queue)
	rt.SetRouteTTL(cfg.Redis.RouteTTL)

	s := server.NewHttpServer(rt)
	go func() {
		if err := s.Run(cfg.Server.Addr); err != nil {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, client.Ping(ctx, nil)
}
