package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestStoreService() (StoreService, *repository.Repository) {
	repo := newTestRepository()
	svc := NewStoreService(repo, zap.NewNop())
	return svc, repo
}

func seedStoreFixtures(repo *repository.Repository) {
	seedPeriod(repo, "p-1", "当前学期", model.PeriodStatusActive)
	_ = repo.User.Create(context.Background(), &model.User{UserID: "stu-1", Username: "ali", Role: model.RoleStudent, Points: 100})
	_ = repo.StoreItem.Create(context.Background(), &model.StoreItem{
		ItemID: "item-1", Name: "Kitap", PointsCost: 60, Stock: 3, IsActive: true,
	})
}

// ── CreateRequest 测试 ──

func TestStoreService_CreateRequest_Success(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	resp, err := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if err != nil {
		t.Fatalf("CreateRequest 应成功: %v", err)
	}
	if resp.Status != model.RequestStatusPending {
		t.Errorf("新申请应为 PENDING，实际=%s", resp.Status)
	}

	// 发起时不扣余额
	u, _ := repo.User.GetByID(context.Background(), "stu-1")
	if u.Points != 100 {
		t.Errorf("发起申请不应扣减余额，实际=%d", u.Points)
	}
}

func TestStoreService_CreateRequest_InsufficientPoints(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)
	_ = repo.User.SetBalances(context.Background(), "stu-1", 10, 0)

	_, err := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("期望 ErrInsufficientPoints，实际: %v", err)
	}
}

func TestStoreService_CreateRequest_OutOfStock(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	item, _ := repo.StoreItem.GetByID(context.Background(), "item-1")
	item.Stock = 0
	_ = repo.StoreItem.Update(context.Background(), item)

	_, err := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if !errors.Is(err, ErrItemOutOfStock) {
		t.Errorf("期望 ErrItemOutOfStock，实际: %v", err)
	}
}

func TestStoreService_CreateRequest_InactiveItem(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	item, _ := repo.StoreItem.GetByID(context.Background(), "item-1")
	item.IsActive = false
	_ = repo.StoreItem.Update(context.Background(), item)

	_, err := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if !errors.Is(err, ErrItemInactive) {
		t.Errorf("期望 ErrItemInactive，实际: %v", err)
	}
}

// ── ReviewRequest 测试 ──

func TestStoreService_ReviewRequest_ApproveDeductsAll(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	created, err := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if err != nil {
		t.Fatalf("CreateRequest 应成功: %v", err)
	}

	resp, err := svc.ReviewRequest(context.Background(), created.ID, &dto.ReviewItemRequestRequest{Status: model.RequestStatusApproved}, "admin-001")
	if err != nil {
		t.Fatalf("ReviewRequest 应成功: %v", err)
	}
	if resp.Status != model.RequestStatusApproved {
		t.Errorf("期望状态 APPROVED，实际=%s", resp.Status)
	}

	// 余额、流水、库存三者必须同步
	u, _ := repo.User.GetByID(context.Background(), "stu-1")
	if u.Points != 40 {
		t.Errorf("期望余额 40，实际=%d", u.Points)
	}
	sum, _ := repo.PointsTx.SumByUser(context.Background(), "stu-1")
	if sum != -60 {
		t.Errorf("期望负数流水合计 -60，实际=%d", sum)
	}
	item, _ := repo.StoreItem.GetByID(context.Background(), "item-1")
	if item.Stock != 2 {
		t.Errorf("期望库存 2，实际=%d", item.Stock)
	}
}

func TestStoreService_ReviewRequest_RejectKeepsBalance(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	created, _ := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")

	resp, err := svc.ReviewRequest(context.Background(), created.ID, &dto.ReviewItemRequestRequest{Status: model.RequestStatusRejected}, "admin-001")
	if err != nil {
		t.Fatalf("ReviewRequest 应成功: %v", err)
	}
	if resp.Status != model.RequestStatusRejected {
		t.Errorf("期望状态 REJECTED，实际=%s", resp.Status)
	}

	u, _ := repo.User.GetByID(context.Background(), "stu-1")
	if u.Points != 100 {
		t.Errorf("驳回不应扣减余额，实际=%d", u.Points)
	}
}

func TestStoreService_ReviewRequest_TerminalStateImmutable(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	created, _ := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")
	if _, err := svc.ReviewRequest(context.Background(), created.ID, &dto.ReviewItemRequestRequest{Status: model.RequestStatusRejected}, "admin-001"); err != nil {
		t.Fatalf("首次审核应成功: %v", err)
	}

	_, err := svc.ReviewRequest(context.Background(), created.ID, &dto.ReviewItemRequestRequest{Status: model.RequestStatusApproved}, "admin-002")
	if !errors.Is(err, ErrRequestAlreadyReviewed) {
		t.Errorf("期望 ErrRequestAlreadyReviewed，实际: %v", err)
	}
}

func TestStoreService_ReviewRequest_BalanceDriftedBelowCost(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)

	created, _ := svc.CreateRequest(context.Background(), &dto.CreateItemRequestRequest{ItemID: "item-1"}, "stu-1")

	// 申请挂起期间余额被扣到不足
	_ = repo.User.SetBalances(context.Background(), "stu-1", 20, 0)

	_, err := svc.ReviewRequest(context.Background(), created.ID, &dto.ReviewItemRequestRequest{Status: model.RequestStatusApproved}, "admin-001")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("期望 ErrInsufficientPoints，实际: %v", err)
	}
}

// ── 商品管理测试 ──

func TestStoreService_UpdateItem_NotFound(t *testing.T) {
	svc, _ := setupTestStoreService()

	name := "新名称"
	_, err := svc.UpdateItem(context.Background(), "nonexistent", &dto.UpdateItemRequest{Name: &name}, "admin-001")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("期望 ErrItemNotFound，实际: %v", err)
	}
}

func TestStoreService_ListItems_ActiveOnly(t *testing.T) {
	svc, repo := setupTestStoreService()
	seedStoreFixtures(repo)
	_ = repo.StoreItem.Create(context.Background(), &model.StoreItem{
		ItemID: "item-2", Name: "下架商品", PointsCost: 10, IsActive: false,
	})

	items, err := svc.ListItems(context.Background(), true)
	if err != nil {
		t.Fatalf("ListItems 应成功: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("仅应返回 1 个在售商品，实际=%d", len(items))
	}
}
