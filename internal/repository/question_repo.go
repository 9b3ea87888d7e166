package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
)

// WeeklyReportQuestionRepository 周报问题目录数据访问接口
type WeeklyReportQuestionRepository interface {
	Create(ctx context.Context, question *model.WeeklyReportQuestion) error
	GetByID(ctx context.Context, id string) (*model.WeeklyReportQuestion, error)
	List(ctx context.Context, targetRole string, activeOnly bool) ([]model.WeeklyReportQuestion, error)
	Update(ctx context.Context, question *model.WeeklyReportQuestion) error
	Delete(ctx context.Context, id string) error
}

type weeklyReportQuestionRepo struct {
	db *gorm.DB
}

// NewWeeklyReportQuestionRepo 创建 WeeklyReportQuestionRepository 实例
func NewWeeklyReportQuestionRepo(db *gorm.DB) WeeklyReportQuestionRepository {
	return &weeklyReportQuestionRepo{db: db}
}

func (r *weeklyReportQuestionRepo) Create(ctx context.Context, question *model.WeeklyReportQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *weeklyReportQuestionRepo) GetByID(ctx context.Context, id string) (*model.WeeklyReportQuestion, error) {
	var question model.WeeklyReportQuestion
	err := r.db.WithContext(ctx).
		Where("question_id = ?", id).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *weeklyReportQuestionRepo) List(ctx context.Context, targetRole string, activeOnly bool) ([]model.WeeklyReportQuestion, error) {
	var questions []model.WeeklyReportQuestion

	db := r.db.WithContext(ctx).Model(&model.WeeklyReportQuestion{})
	if targetRole != "" {
		db = db.Where("target_role = ?", targetRole)
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("order_index, created_at").Find(&questions).Error
	return questions, err
}

func (r *weeklyReportQuestionRepo) Update(ctx context.Context, question *model.WeeklyReportQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

// Delete 硬删除问题；已提交周报中的评估项是字符串快照，不受影响
func (r *weeklyReportQuestionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("question_id = ?", id).
		Delete(&model.WeeklyReportQuestion{}).Error
}
