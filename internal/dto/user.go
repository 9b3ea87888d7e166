package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Username  string  `json:"username"   binding:"required,min=3,max=50"`
	Password  string  `json:"password"   binding:"required,min=8,max=64"`
	Role      string  `json:"role"       binding:"required,oneof=ADMIN TUTOR ASISTAN STUDENT BOARD_MEMBER"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
	TutorID   *string `json:"tutor_id"   binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户请求（管理员或本人）
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN TUTOR ASISTAN STUDENT BOARD_MEMBER"`
}

// AssignTutorRequest 指定导师请求
type AssignTutorRequest struct {
	TutorID *string `json:"tutor_id" binding:"omitempty,uuid"` // null 表示取消指定
}

// ResetPasswordRequest 管理员重置密码请求
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"     binding:"omitempty,oneof=ADMIN TUTOR ASISTAN STUDENT BOARD_MEMBER"`
	TutorID string `form:"tutor_id" binding:"omitempty,uuid"`
	Keyword string `form:"keyword"  binding:"omitempty,max=100"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Points     int     `json:"points"`
	Experience int     `json:"experience"`
	TutorID    *string `json:"tutor_id,omitempty"`
	TutorName  string  `json:"tutor_name,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
