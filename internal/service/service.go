package service

import (
	"go.uber.org/zap"

	"bilgeverse/backend/config"
	"bilgeverse/backend/internal/repository"
	"bilgeverse/backend/pkg/jwt"
	"bilgeverse/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Period       PeriodService
	Ledger       LedgerService
	WeeklyReport WeeklyReportService
	Store        StoreService
	Community    CommunityService
	Report       ReportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil，依赖 Redis 的能力（黑名单、排行榜缓存）自动退化
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Period:       NewPeriodService(repo, logger),
		Ledger:       NewLedgerService(repo, logger),
		WeeklyReport: NewWeeklyReportService(repo, cfg.Report.MaxPointsPerReview, logger),
		Store:        NewStoreService(repo, logger),
		Community:    NewCommunityService(repo, logger),
		Report:       NewReportService(repo, rdb, cfg.Report.LeaderboardCacheTTL, logger),
	}
}
