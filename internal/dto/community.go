package dto

// ── 活动/公告/心愿/学生备注 DTO ──

// CreateEventRequest 创建活动请求
type CreateEventRequest struct {
	Title       string  `json:"title"       binding:"required,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Location    *string `json:"location"    binding:"omitempty,max=200"`
	StartTime   string  `json:"start_time"  binding:"required"` // RFC3339
	EndTime     *string `json:"end_time"`
}

// UpdateEventRequest 更新活动请求
type UpdateEventRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Location    *string `json:"location"    binding:"omitempty,max=200"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

// EventResponse 活动响应
type EventResponse struct {
	ID          string  `json:"id"`
	PeriodID    string  `json:"period_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time,omitempty"`
}

// CreateAnnouncementRequest 创建公告请求
type CreateAnnouncementRequest struct {
	Title   string `json:"title"   binding:"required,min=2,max=200"`
	Content string `json:"content" binding:"required,max=5000"`
}

// AnnouncementResponse 公告响应
type AnnouncementResponse struct {
	ID        string `json:"id"`
	PeriodID  string `json:"period_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// CreateWishRequest 创建心愿请求
type CreateWishRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// WishResponse 心愿响应
type WishResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	PeriodID  string `json:"period_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// CreateStudentNoteRequest 创建学生备注请求
type CreateStudentNoteRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Content   string `json:"content"    binding:"required,max=2000"`
}

// StudentNoteResponse 学生备注响应
type StudentNoteResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	PeriodID   string `json:"period_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}
