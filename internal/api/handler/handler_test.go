package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock LedgerService ──

type mockLedgerService struct {
	awardResult *dto.BalanceResponse
	awardErr    error
	listResult  []dto.TransactionResponse
	listTotal   int64
	listErr     error
	recalc      *dto.RecalculateResponse
	recalcErr   error
}

func (m *mockLedgerService) AwardPoints(_ context.Context, _ *dto.AwardPointsRequest, _, _ string) (*dto.BalanceResponse, error) {
	return m.awardResult, m.awardErr
}
func (m *mockLedgerService) AwardExperience(_ context.Context, _ *dto.AwardExperienceRequest, _, _ string) (*dto.BalanceResponse, error) {
	return m.awardResult, m.awardErr
}
func (m *mockLedgerService) ListPointsTransactions(_ context.Context, _ *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockLedgerService) ListExperienceTransactions(_ context.Context, _ *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockLedgerService) Recalculate(_ context.Context) (*dto.RecalculateResponse, error) {
	return m.recalc, m.recalcErr
}

// ── Mock WeeklyReportService ──

type mockWeeklyReportService struct {
	reportResult   *dto.WeeklyReportResponse
	reportErr      error
	listResult     []dto.WeeklyReportResponse
	listTotal      int64
	listErr        error
	bulkResult     *dto.BulkReviewResponse
	bulkErr        error
	questionResult *dto.QuestionResponse
	questionErr    error
	questionsList  []dto.QuestionResponse
}

func (m *mockWeeklyReportService) SaveDraft(_ context.Context, _ *dto.SaveDraftRequest, _, _ string) (*dto.WeeklyReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockWeeklyReportService) Submit(_ context.Context, _, _ string) (*dto.WeeklyReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockWeeklyReportService) GetByID(_ context.Context, _ string) (*dto.WeeklyReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockWeeklyReportService) List(_ context.Context, _ *dto.ReportListRequest) ([]dto.WeeklyReportResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockWeeklyReportService) Review(_ context.Context, _ string, _ *dto.ReviewReportRequest, _ string) (*dto.WeeklyReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockWeeklyReportService) BulkReview(_ context.Context, _ *dto.BulkReviewRequest, _ string) (*dto.BulkReviewResponse, error) {
	return m.bulkResult, m.bulkErr
}
func (m *mockWeeklyReportService) CreateQuestion(_ context.Context, _ *dto.CreateQuestionRequest, _ string) (*dto.QuestionResponse, error) {
	return m.questionResult, m.questionErr
}
func (m *mockWeeklyReportService) UpdateQuestion(_ context.Context, _ string, _ *dto.UpdateQuestionRequest, _ string) (*dto.QuestionResponse, error) {
	return m.questionResult, m.questionErr
}
func (m *mockWeeklyReportService) DeleteQuestion(_ context.Context, _ string) error {
	return m.questionErr
}
func (m *mockWeeklyReportService) ListQuestions(_ context.Context, _ string, _ bool) ([]dto.QuestionResponse, error) {
	return m.questionsList, nil
}

// ── Mock ReportService ──

type mockReportService struct {
	leaderboard    *dto.LeaderboardResponse
	leaderboardErr error
	stats          []dto.ClassroomStatsResponse
	statsErr       error
	buf            *bytes.Buffer
	filename       string
	exportErr      error
}

func (m *mockReportService) Leaderboard(_ context.Context, _ int) (*dto.LeaderboardResponse, error) {
	return m.leaderboard, m.leaderboardErr
}
func (m *mockReportService) ClassroomStats(_ context.Context) ([]dto.ClassroomStatsResponse, error) {
	return m.stats, m.statsErr
}
func (m *mockReportService) ExportLeaderboard(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.exportErr
}
func (m *mockReportService) ExportPointsTransactions(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.exportErr
}
func (m *mockReportService) ExportCalendar(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.exportErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "ADMIN")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "ali",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "ali",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_FromCookie(t *testing.T) {
	mock := &mockAuthService{
		refreshResult: &dto.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "revoked",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrOldPasswordWrong}, nil)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword1",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuth(c)
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11004 {
		t.Errorf("expected error code 11004, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// LedgerHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLedgerHandler_AwardPoints_Success(t *testing.T) {
	mock := &mockLedgerService{
		awardResult: &dto.BalanceResponse{UserID: "stu-1", Points: 10},
	}
	h := NewLedgerHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/points/award", jsonBody(dto.AwardPointsRequest{
		UserID: "11111111-1111-1111-1111-111111111111",
		Amount: 10,
		Reason: "课堂表现",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/points/award", func(c *gin.Context) {
		setAuth(c)
		h.AwardPoints(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLedgerHandler_AwardPoints_Unauthenticated(t *testing.T) {
	h := NewLedgerHandler(&mockLedgerService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/points/award", jsonBody(dto.AwardPointsRequest{
		UserID: "11111111-1111-1111-1111-111111111111",
		Amount: 10,
		Reason: "课堂表现",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/points/award", h.AwardPoints)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLedgerHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"AmountZero", service.ErrAmountZero, 400, 14001},
		{"UserNotFound", service.ErrUserNotFound, 404, 12001},
		{"NoActivePeriod", service.ErrNoActivePeriod, 400, 13004},
		{"NotYourStudent", service.ErrNotYourStudent, 403, 14002},
		{"TargetNotStudent", service.ErrTargetNotStudent, 400, 14003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLedgerHandler(&mockLedgerService{awardErr: tt.err})

			w := setupRecorder()
			req := httptest.NewRequest("POST", "/points/award", jsonBody(dto.AwardPointsRequest{
				UserID: "11111111-1111-1111-1111-111111111111",
				Amount: 10,
				Reason: "课堂表现",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/points/award", func(c *gin.Context) {
				setAuth(c)
				h.AwardPoints(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// WeeklyReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestWeeklyReportHandler_Review_Success(t *testing.T) {
	mock := &mockWeeklyReportService{
		reportResult: &dto.WeeklyReportResponse{ID: "r-1", Status: "APPROVED", PointsAwarded: 8},
	}
	h := NewWeeklyReportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/weekly-reports/r-1/review", jsonBody(dto.ReviewReportRequest{
		Status:        "APPROVED",
		PointsAwarded: 8,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/weekly-reports/:id/review", func(c *gin.Context) {
		setAuth(c)
		h.Review(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestWeeklyReportHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrReportNotFound, 404, 15001},
		{"NotOwner", service.ErrReportNotOwner, 403, 15002},
		{"NotDraft", service.ErrReportNotDraft, 400, 15003},
		{"NotSubmitted", service.ErrReportNotSubmitted, 400, 15004},
		{"AlreadyReviewed", service.ErrReportAlreadyReviewed, 400, 15005},
		{"WeekOutOfRange", service.ErrWeekOutOfRange, 400, 15006},
		{"PointsExceedLimit", service.ErrPointsExceedLimit, 400, 15009},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWeeklyReportHandler(&mockWeeklyReportService{reportErr: tt.err})

			w := setupRecorder()
			req := httptest.NewRequest("PUT", "/weekly-reports/r-1/review", jsonBody(dto.ReviewReportRequest{
				Status: "APPROVED",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PUT("/weekly-reports/:id/review", func(c *gin.Context) {
				setAuth(c)
				h.Review(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWeeklyReportHandler_BulkReview_BadJSON(t *testing.T) {
	h := NewWeeklyReportHandler(&mockWeeklyReportService{})

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/weekly-reports/bulk-review", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/weekly-reports/bulk-review", func(c *gin.Context) {
		setAuth(c)
		h.BulkReview(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Leaderboard_Success(t *testing.T) {
	mock := &mockReportService{
		leaderboard: &dto.LeaderboardResponse{
			Entries: []dto.LeaderboardEntry{{Rank: 1, UserID: "stu-1", Points: 80}},
		},
	}
	h := NewReportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/reports/leaderboard?limit=10", nil)

	r := gin.New()
	r.GET("/reports/leaderboard", h.Leaderboard)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestReportHandler_Leaderboard_InvalidLimit(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/reports/leaderboard?limit=abc", nil)

	r := gin.New()
	r.GET("/reports/leaderboard", h.Leaderboard)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_ExportLeaderboard_Success(t *testing.T) {
	mock := &mockReportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "排行榜_20260901.xlsx",
	}
	h := NewReportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/reports/export/leaderboard", nil)

	r := gin.New()
	r.GET("/reports/export/leaderboard", h.ExportLeaderboard)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestReportHandler_ExportCalendar_MissingPeriodID(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/reports/export/calendar", nil)

	r := gin.New()
	r.GET("/reports/export/calendar", h.ExportCalendar)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_Export_NoData(t *testing.T) {
	h := NewReportHandler(&mockReportService{exportErr: service.ErrExportNoData})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/reports/export/leaderboard", nil)

	r := gin.New()
	r.GET("/reports/export/leaderboard", h.ExportLeaderboard)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 18001 {
		t.Errorf("expected error code 18001, got %d", resp.Code)
	}
}
