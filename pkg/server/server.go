package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/api"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/autorecord"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/cache"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/config"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/coordinator"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/jobs"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/lifecycle"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/router"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/scheduler"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/sql"
)

func InitServer(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := log.InitGlobalLogger(cfg.Log); err != nil {
		return errors.NewError().
			WithCode(errors.CodeInitializeError).
			WithMessage("failed to init logger").
			WithError(err)
	}

	if _, err := sql.InitDefault(cfg.Database); err != nil {
		return err
	}
	if err := cache.InitRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB); err != nil {
		return err
	}

	client := cache.GetRedisClient()
	store := cache.NewStore(client)
	q := queue.NewRedisQueue(client)

	jobFacade := database.NewJobFacade()
	policyFacade := database.NewPolicyFacade()
	resultFacade := database.NewResultFacade()
	catalogFacade := database.NewCatalogFacade()
	settingsFacade := database.NewSettingsFacade()
	historyFacade := database.NewPriceHistoryFacade()
	botFacade := database.NewBotFacade()

	engine := lifecycle.NewEngine(jobFacade, policyFacade, resultFacade, store, q)
	service := coordinator.NewService(engine, jobFacade, catalogFacade, settingsFacade, store)
	if err := service.ReloadCacheConfig(ctx); err != nil {
		log.Warnf("cache config load failed, using defaults: %v", err)
	}

	materializer := scheduler.NewMaterializer(
		policyFacade, jobFacade, catalogFacade, store,
		cfg.Scheduler.GetPolicyBatch(), cfg.Scheduler.GetURLBatch(),
	)
	consumer := autorecord.NewConsumer(
		q, resultFacade, jobFacade, catalogFacade, historyFacade, settingsFacade, store,
		cfg.AutoRecord.GetBatch(), cfg.AutoRecord.GetMaxRetries(),
		cfg.AutoRecord.GetRetryFailedEvery(), cfg.AutoRecord.GetRetryFailedLimit(),
	)

	handler := api.NewHandler(api.NewBotAuthenticator(botFacade), service, q)
	router.RegisterGroup(handler.RegisterRouter)

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	if err := router.InitRouter(ginEngine, cfg); err != nil {
		return err
	}

	jobs.InitJobs(cfg, materializer, engine, consumer, q, jobFacade)
	runner, err := jobs.Start(ctx)
	if err != nil {
		return errors.NewError().
			WithCode(errors.CodeInitializeError).
			WithMessage("failed to start background jobs").
			WithError(err)
	}
	go func() {
		<-ctx.Done()
		<-runner.Stop().Done()
	}()

	healthPort := cfg.HealthPort
	if healthPort == 0 {
		healthPort = cfg.HttpPort + 1
	}
	InitHealthServer(healthPort)

	log.Infof("coordinator listening on :%d (health on :%d)", cfg.HttpPort, healthPort)
	return ginEngine.Run(fmt.Sprintf(":%d", cfg.HttpPort))
}
