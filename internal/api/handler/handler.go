package handler

import (
	"bilgeverse/backend/config"
	"bilgeverse/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Period       *PeriodHandler
	Ledger       *LedgerHandler
	WeeklyReport *WeeklyReportHandler
	Store        *StoreHandler
	Community    *CommunityHandler
	Report       *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, cfg),
		User:         NewUserHandler(svc.User),
		Period:       NewPeriodHandler(svc.Period),
		Ledger:       NewLedgerHandler(svc.Ledger),
		WeeklyReport: NewWeeklyReportHandler(svc.WeeklyReport),
		Store:        NewStoreHandler(svc.Store),
		Community:    NewCommunityHandler(svc.Community),
		Report:       NewReportHandler(svc.Report),
	}
}
