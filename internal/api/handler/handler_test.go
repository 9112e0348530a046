package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"tutorlink/backend/internal/api/middleware"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/jwt"
	"tutorlink/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult   *dto.RegisterResponse
	registerErr      error
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserDetailResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock TeacherService ──

type mockTeacherService struct {
	listResult    []dto.TeacherBrief
	listTotal     int64
	listErr       error
	getResult     *dto.TeacherDetailResponse
	getErr        error
	slotsResult   *dto.SlotsResponse
	slotsErr      error
	publishResult *dto.SlotsResponse
	publishErr    error
	unpubResult   *dto.SlotsResponse
	unpubErr      error
	takeErr       error
	restoreErr    error
}

func (m *mockTeacherService) List(_ context.Context, _ *dto.TeacherListRequest) ([]dto.TeacherBrief, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockTeacherService) GetByID(_ context.Context, _ string) (*dto.TeacherDetailResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTeacherService) PublishSlots(_ context.Context, _ string, _ *dto.PublishSlotsRequest) (*dto.SlotsResponse, error) {
	return m.publishResult, m.publishErr
}
func (m *mockTeacherService) ListSlots(_ context.Context, _ string) (*dto.SlotsResponse, error) {
	return m.slotsResult, m.slotsErr
}
func (m *mockTeacherService) UnpublishSlot(_ context.Context, _ string, _ string) (*dto.SlotsResponse, error) {
	return m.unpubResult, m.unpubErr
}
func (m *mockTeacherService) TakeSlot(_ context.Context, _ string, _ time.Time) error {
	return m.takeErr
}
func (m *mockTeacherService) RestoreSlot(_ context.Context, _ string, _ time.Time) error {
	return m.restoreErr
}

// ── Mock BookingService ──

type mockBookingService struct {
	bookResult   *dto.AppointmentResponse
	bookErr      error
	getResult    *dto.AppointmentResponse
	getErr       error
	listResult   []dto.AppointmentResponse
	listTotal    int64
	listErr      error
	updateResult *dto.AppointmentResponse
	updateErr    error
}

func (m *mockBookingService) Book(_ context.Context, _ string, _ *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.bookResult, m.bookErr
}
func (m *mockBookingService) Get(_ context.Context, _, _, _ string) (*dto.AppointmentResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockBookingService) ListMine(_ context.Context, _, _ string, _ *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockBookingService) UpdateStatus(_ context.Context, _, _, _ string, _ *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	return m.updateResult, m.updateErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAppointmentsXLSX(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportScheduleICS(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context, userID, role string) {
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxRole, role)
	c.Set(middleware.CtxClaims, &jwt.Claims{
		UserID:    userID,
		Role:      role,
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
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
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "student@example.com",
		Password: "Test1234",
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
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
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
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "student@example.com",
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

func TestAuthHandler_Login_AccountPending(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrAccountPending})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "张三",
		Email:    "taken@example.com",
		Password: "Test1234",
		Role:     "student",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_Created(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		registerResult: &dto.RegisterResponse{
			ID: "u1", Name: "张三", Email: "new@example.com", Role: "teacher", Status: "pending",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "张三",
		Email:    "new@example.com",
		Password: "Test1234",
		Role:     "teacher",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		getCurrentResult: &dto.UserDetailResponse{ID: "u1", Name: "张三"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) {
		setAuth(c, "u1", "student")
		h.GetCurrentUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	// 不注入认证上下文
	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c, "u1", "student")
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_OldPasswordWrong(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrOldPasswordWrong})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "NewPass1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuth(c, "u1", "student")
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11006 {
		t.Errorf("expected error code 11006, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TeacherHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTeacherHandler_List_Success(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{
		listResult: []dto.TeacherBrief{{ID: "t1", Name: "李老师", Subject: "数学"}},
		listTotal:  1,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/teachers?page=1&page_size=10", nil)

	r := gin.New()
	r.GET("/teachers", h.List)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "李老师") {
		t.Error("响应中缺少教师数据")
	}
}

func TestTeacherHandler_Get_NotFound(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{getErr: service.ErrTeacherNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/teachers/t404", nil)

	r := gin.New()
	r.GET("/teachers/:id", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
}

func TestTeacherHandler_PublishSlots_Success(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{
		publishResult: &dto.SlotsResponse{
			TeacherID: "t1",
			Slots:     []string{"2026-10-01T10:00:00Z"},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/teachers/me/slots", jsonBody(dto.PublishSlotsRequest{
		Slots: []string{"2026-10-01T10:00:00Z"},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/teachers/me/slots", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.PublishSlots(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTeacherHandler_PublishSlots_SlotInPast(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{publishErr: service.ErrSlotInPast})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/teachers/me/slots", jsonBody(dto.PublishSlotsRequest{
		Slots: []string{"2020-01-01T10:00:00Z"},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/teachers/me/slots", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.PublishSlots(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13003 {
		t.Errorf("expected error code 13003, got %d", resp.Code)
	}
}

func TestTeacherHandler_UnpublishSlot_MissingQuery(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/teachers/me/slots", nil)

	r := gin.New()
	r.DELETE("/teachers/me/slots", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.UnpublishSlot(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTeacherHandler_UnpublishSlot_Busy(t *testing.T) {
	h := NewTeacherHandler(&mockTeacherService{unpubErr: service.ErrSlotStoreBusy})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/teachers/me/slots?slot=2026-10-01T10%3A00%3A00Z", nil)

	r := gin.New()
	r.DELETE("/teachers/me/slots", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.UnpublishSlot(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13007 {
		t.Errorf("expected error code 13007, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AppointmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAppointmentHandler_Book_Created(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{
		bookResult: &dto.AppointmentResponse{
			ID:     "a1",
			Status: "pending",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/appointments", jsonBody(dto.BookAppointmentRequest{
		TeacherID:   "0a4a50a2-0000-4000-8000-000000000001",
		DateTime:    "2026-10-01T10:00:00Z",
		BookingType: "slot_booking",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/appointments", func(c *gin.Context) {
		setAuth(c, "s1", "student")
		h.Book(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAppointmentHandler_Book_TimeConflict(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{bookErr: service.ErrTimeConflict})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/appointments", jsonBody(dto.BookAppointmentRequest{
		TeacherID:   "0a4a50a2-0000-4000-8000-000000000001",
		DateTime:    "2026-10-01T10:00:00Z",
		BookingType: "custom_request",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/appointments", func(c *gin.Context) {
		setAuth(c, "s1", "student")
		h.Book(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14007 {
		t.Errorf("expected error code 14007, got %d", resp.Code)
	}
}

func TestAppointmentHandler_Book_SlotUnavailable(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{bookErr: service.ErrSlotUnavailable})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/appointments", jsonBody(dto.BookAppointmentRequest{
		TeacherID:   "0a4a50a2-0000-4000-8000-000000000001",
		DateTime:    "2026-10-01T10:00:00Z",
		BookingType: "slot_booking",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/appointments", func(c *gin.Context) {
		setAuth(c, "s1", "student")
		h.Book(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14006 {
		t.Errorf("expected error code 14006, got %d", resp.Code)
	}
}

func TestAppointmentHandler_UpdateStatus_Forbidden(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{updateErr: service.ErrNotAppointmentParty})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/appointments/a1/status", jsonBody(dto.UpdateAppointmentStatusRequest{
		Status: "approved",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/appointments/:id/status", func(c *gin.Context) {
		setAuth(c, "outsider", "student")
		h.UpdateStatus(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14008 {
		t.Errorf("expected error code 14008, got %d", resp.Code)
	}
}

func TestAppointmentHandler_UpdateStatus_StatusChanged(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{updateErr: service.ErrStatusChanged})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/appointments/a1/status", jsonBody(dto.UpdateAppointmentStatusRequest{
		Status: "canceled",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/appointments/:id/status", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.UpdateStatus(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14010 {
		t.Errorf("expected error code 14010, got %d", resp.Code)
	}
}

func TestAppointmentHandler_ListMine_Success(t *testing.T) {
	h := NewAppointmentHandler(&mockBookingService{
		listResult: []dto.AppointmentResponse{{ID: "a1", Status: "pending"}},
		listTotal:  1,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/appointments?page=1&page_size=10", nil)

	r := gin.New()
	r.GET("/appointments", func(c *gin.Context) {
		setAuth(c, "s1", "student")
		h.ListMine(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAppointments_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("PK-fake-xlsx-content"),
		filename: "appointments_20260901.xlsx",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/appointments", nil)

	r := gin.New()
	r.GET("/export/appointments", func(c *gin.Context) {
		setAuth(c, "s1", "student")
		h.ExportAppointments(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "appointments_20260901.xlsx") {
		t.Errorf("Content-Disposition 缺少文件名: %s", cd)
	}
	if w.Header().Get("Content-Type") != service.ContentTypeXLSX {
		t.Errorf("unexpected content type: %s", w.Header().Get("Content-Type"))
	}
}

func TestExportHandler_ExportSchedule_NoData(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoData})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/schedule.ics", nil)

	r := gin.New()
	r.GET("/export/schedule.ics", func(c *gin.Context) {
		setAuth(c, "t1", "teacher")
		h.ExportSchedule(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 18001 {
		t.Errorf("expected error code 18001, got %d", resp.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
