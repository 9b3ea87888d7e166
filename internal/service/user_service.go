package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("用户不存在")
	ErrUsernameTaken  = errors.New("用户名已被占用")
	ErrTutorInvalid   = errors.New("指定的导师无效")
	ErrSelfOperation  = errors.New("不能对自己执行该操作")
	ErrForbiddenField = errors.New("没有权限修改该字段")
)

// UserService 用户管理业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	ListStudentsOfTutor(ctx context.Context, tutorID string) ([]dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, id string, role string, callerID string) (*dto.UserResponse, error)
	AssignTutor(ctx context.Context, id string, tutorID *string, callerID string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, id string, newPassword string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户名失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if req.TutorID != nil {
		if err := s.checkTutor(ctx, *req.TutorID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		TutorID:      req.TutorID,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建用户", zap.String("user_id", user.UserID), zap.String("role", user.Role))

	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Role:    req.Role,
		TutorID: req.TutorID,
		Keyword: req.Keyword,
	}

	users, total, err := s.repo.User.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}

	return result, total, nil
}

// ListStudentsOfTutor 导师名下的学生清单
func (s *userService) ListStudentsOfTutor(ctx context.Context, tutorID string) ([]dto.UserResponse, error) {
	students, err := s.repo.User.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("查询导师学生失败", zap.String("tutor_id", tutorID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		result = append(result, *toUserResponse(&students[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 更新基础资料；管理员可改任何人，其余角色只能改自己
func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	if callerRole != model.RoleAdmin && callerID != id {
		return nil, ErrForbiddenField
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── AssignRole ──────────────────────

// AssignRole 变更用户角色；禁止管理员改动自己的角色，避免误降权锁死后台
func (s *userService) AssignRole(ctx context.Context, id string, role string, callerID string) (*dto.UserResponse, error) {
	if id == callerID {
		return nil, ErrSelfOperation
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("变更用户角色失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("变更用户角色",
		zap.String("user_id", id),
		zap.String("role", role),
		zap.String("caller_id", callerID),
	)

	return toUserResponse(user), nil
}

// ────────────────────── AssignTutor ──────────────────────

// AssignTutor 指定或取消学生的导师，导师必须是 TUTOR 或 ASISTAN
func (s *userService) AssignTutor(ctx context.Context, id string, tutorID *string, callerID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if tutorID != nil {
		if *tutorID == id {
			return nil, ErrSelfOperation
		}
		if err := s.checkTutor(ctx, *tutorID); err != nil {
			return nil, err
		}
	}

	user.TutorID = tutorID
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("指定导师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重读以带出导师关联
	user, err = s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── ResetPassword ──────────────────────

// ResetPassword 管理员重置用户密码，不校验原密码
func (s *userService) ResetPassword(ctx context.Context, id string, newPassword string, callerID string) error {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Warn("管理员重置用户密码",
		zap.String("user_id", id),
		zap.String("caller_id", callerID),
	)

	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除用户；禁止删除自己
// 流水与周报保留，用户名可在删除后重新注册
func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrSelfOperation
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("删除用户", zap.String("user_id", id), zap.String("caller_id", callerID))
	return nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) checkTutor(ctx context.Context, tutorID string) error {
	tutor, err := s.repo.User.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTutorInvalid
		}
		s.logger.Error("查询导师失败", zap.String("id", tutorID), zap.Error(err))
		return err
	}
	if tutor.Role != model.RoleTutor && tutor.Role != model.RoleAsistan {
		return ErrTutorInvalid
	}
	return nil
}

// toUserResponse 模型转脱敏响应，认证模块共用
func toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:         user.UserID,
		Username:   user.Username,
		Role:       user.Role,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Points:     user.Points,
		Experience: user.Experience,
		TutorID:    user.TutorID,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
	if user.Tutor != nil {
		resp.TutorName = user.Tutor.FullName()
	}
	return resp
}
