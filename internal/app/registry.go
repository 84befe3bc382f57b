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
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const idempotencyTTL = 24 * time.Hour

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	balanceRepo := leavebalance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath, cfg.RBACPolicyPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	leaveTypeService := leavetype.NewService(gormDB, leaveTypeRepo, auditRepo, rdb, cfg.LeaveTypeCacheTTL)
	balanceService := leavebalance.NewService(gormDB, balanceRepo, leaveTypeRepo, employeeRepo, auditRepo)
	leaveService := leave.NewService(gormDB, leave.Repositories{
		Leaves:     leaveRepo,
		Employees:  employeeRepo,
		LeaveTypes: leaveTypeRepo,
		Balances:   balanceRepo,
		Audit:      auditRepo,
		Outbox:     outboxRepo,
	}, leave.WithLogger(zap.L()))
	notificationService := notification.NewService(notificationRepo)

	seedLeaveTypes(context.Background(), leaveTypeService)

	// --- Handlers ---
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	balanceHandler := leavebalance.NewHandler(balanceService)
	leaveHandler := leave.NewHandler(leaveService)
	notificationHandler := notification.NewHandler(notificationService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	authMW := middleware.AuthMiddleware(cfg.JWTSecret)
	writeGuards := []gin.HandlerFunc{
		middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		middleware.Idempotency(rdb, idempotencyTTL),
	}

	api := router.Group("/api/v1")
	{
		leavetype.RegisterRoutes(api, leaveTypeHandler, authMW, rbacService)
		leavebalance.RegisterRoutes(api, balanceHandler, authMW, rbacService)
		leave.RegisterRoutes(api, leaveHandler, authMW, rbacService, writeGuards...)
		notification.RegisterRoutes(api, notificationHandler, authMW, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, authMW)
	}

	return nil
}
