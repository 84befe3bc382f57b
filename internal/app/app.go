package app

import (
	"context"
	"time"

	"go-hrms/internal/audit"
	"go-hrms/internal/config"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/leavebalance"
	"go-hrms/internal/leavetype"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/notification"
	"go-hrms/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// BuildApp connects infrastructure, migrates the schema and mounts every
// module on router. The returned func releases the connections.
func BuildApp(cfg config.Config, router *gin.Engine) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrate(gormDB); err != nil {
		return nil, err
	}

	// Redis backs the leave-type cache and idempotency keys; both degrade
	// to pass-through without it.
	var rdb *redis.Client
	rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 3)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	}

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L().Named("http")),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	)

	if err := registerModules(router, cfg, gormDB, rdb); err != nil {
		return nil, err
	}

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cleanup, nil
}

func connectDatabase(cfg config.Config) (*gorm.DB, error) {
	return connection.ConnectGORMWithRetry(connection.PostgresConfig{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
	}, cfg.DB.MaxRetries)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&leavetype.LeaveType{},
		&leavebalance.Balance{},
		&leave.Application{},
		&audit.Entry{},
		&kafka.OutboxEvent{},
		&notification.Notification{},
	)
}

func seedLeaveTypes(ctx context.Context, svc leavetype.Service) {
	logger := zap.L().Named("app.seed")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := svc.SeedDefaults(ctx)
	if err != nil {
		logger.Error("seed leave types failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("seeded default leave types", zap.Int("count", n))
	}
}
