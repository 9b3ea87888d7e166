package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
)

// UserListFilters 用户列表过滤条件
type UserListFilters struct {
	Role    string
	TutorID string
	Keyword string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	ListByTutor(ctx context.Context, tutorID string) ([]model.User, error)
	AddPoints(ctx context.Context, userID string, delta int) error
	AddExperience(ctx context.Context, userID string, delta int) error
	SetBalances(ctx context.Context, userID string, points, experience int) error
	ZeroAllBalances(ctx context.Context) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *userRepo) List(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filters != nil {
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.TutorID != "" {
			db = db.Where("tutor_id = ?", filters.TutorID)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", kw, kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Tutor").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("points DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListByTutor(ctx context.Context, tutorID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("tutor_id = ?", tutorID).
		Order("created_at").
		Find(&users).Error
	return users, err
}

func (r *userRepo) AddPoints(ctx context.Context, userID string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta)).Error
}

func (r *userRepo) AddExperience(ctx context.Context, userID string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("experience", gorm.Expr("experience + ?", delta)).Error
}

func (r *userRepo) SetBalances(ctx context.Context, userID string, points, experience int) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points":     points,
			"experience": experience,
		}).Error
}

// ZeroAllBalances 清零所有用户的积分与经验
// 学期激活时 reset_data=true 触发，破坏性且不可逆
func (r *userRepo) ZeroAllBalances(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"points":     0,
			"experience": 0,
		}).Error
}
