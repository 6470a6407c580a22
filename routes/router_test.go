package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rsvp.link/configs/configslog"
	admin_handlers "rsvp.link/handlers/admin"
	api_handlers "rsvp.link/handlers/api"
	auth_handlers "rsvp.link/handlers/auth"
	dashboard_handlers "rsvp.link/handlers/dashboard"
	invite_handlers "rsvp.link/handlers/invite"
	"rsvp.link/middlewares"
	"rsvp.link/models"
	"rsvp.link/pkg/sessiontoken"
	"rsvp.link/repositories"
	"rsvp.link/services"
)

func TestMain(m *testing.M) {
	configslog.InitLogger(false)
	os.Exit(m.Run())
}

var testDBSeq atomic.Int64

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	codec *sessiontoken.Codec
}

// newTestEnv boots the full application against an in-memory database,
// mirroring the wiring in main.go.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:routes%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Style{},
		&models.Invitation{},
		&models.SystemConfig{},
		&models.NotificationLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	userRepo := repositories.NewUserRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)
	styleRepo := repositories.NewStyleRepository(db)
	configRepo := repositories.NewSystemConfigRepository(db)
	logRepo := repositories.NewNotificationLogRepository(db)

	notificationService := services.NewNotificationService(configRepo, logRepo)
	invitationService := services.NewInvitationService(db, invitationRepo, styleRepo, userRepo, configRepo, notificationService)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	styleService := services.NewStyleService(styleRepo)
	configService := services.NewConfigService(configRepo)

	codec := sessiontoken.NewCodec("test-secret")

	engine := html.New("../views", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	SetupRoutes(app, codec, Handlers{
		Auth:      auth_handlers.NewAuthHandler(authService, codec, false),
		Invite:    invite_handlers.NewInviteHandler(invitationService, configService),
		QR:        api_handlers.NewQRHandler(invitationService, "http://localhost:3000"),
		Dashboard: dashboard_handlers.NewDashboardHandler(invitationService, styleService),
		Admin:     admin_handlers.NewAdminHandler(userService, styleService, configService, invitationService, logRepo),
	})

	return &testEnv{app: app, db: db, codec: codec}
}

func (e *testEnv) seedUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Name:     "测试用户",
		Username: username,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedInvitation(t *testing.T, ownerID uint) *models.Invitation {
	t.Helper()
	style := &models.Style{Name: fmt.Sprintf("样式%d", testDBSeq.Add(1)), Component: models.StyleComponentClassic, IsActive: true}
	if err := e.db.Create(style).Error; err != nil {
		t.Fatalf("seed style: %v", err)
	}
	invitation := &models.Invitation{
		GuestName: "测试宾客",
		Language:  "zh",
		Status:    models.StatusPending,
		StyleID:   style.ID,
		UserID:    ownerID,
	}
	if err := e.db.Create(invitation).Error; err != nil {
		t.Fatalf("seed invitation: %v", err)
	}
	return invitation
}

func (e *testEnv) sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := e.codec.Encrypt(sessiontoken.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Name:     user.Name,
	})
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}
	return &http.Cookie{Name: middlewares.SessionCookieName, Value: token}
}

func (e *testEnv) request(t *testing.T, method, target string, body io.Reader, cookie *http.Cookie, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestAccessGuard_RedirectsAnonymousToLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/dashboard", "/dashboard/invitations", "/admin", "/admin/users"} {
		resp := env.request(t, http.MethodGet, target, nil, nil, nil)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("GET %s status = %d, want 302", target, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirect to %q, want /login", target, loc)
		}
	}
}

func TestAccessGuard_SalesCannotReachAdmin(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)
	cookie := env.sessionCookie(t, sales)

	resp := env.request(t, http.MethodGet, "/admin", nil, cookie, nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect to %q, want /dashboard", loc)
	}

	// Same redirect for JSON clients; authenticated non-admins never
	// see an admin response of any shape.
	resp = env.request(t, http.MethodGet, "/admin/users", nil, cookie, map[string]string{
		fiber.HeaderAccept: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusFound {
		t.Errorf("JSON status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("JSON redirect to %q, want /dashboard", loc)
	}
}

func TestAdminUsers_OmitsPasswordHashes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	env.seedUser(t, "sales1", models.RoleSales)
	cookie := env.sessionCookie(t, admin)

	resp := env.request(t, http.MethodGet, "/admin/users", nil, cookie, map[string]string{
		fiber.HeaderAccept: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(body), "$2a$") {
		t.Error("user listing exposes bcrypt hashes")
	}
	if !strings.Contains(string(body), "sales1") {
		t.Error("user listing missing seeded username")
	}
}

func TestAccessGuard_AdminReachesBothAreas(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	cookie := env.sessionCookie(t, admin)

	for _, target := range []string{"/admin", "/dashboard"} {
		resp := env.request(t, http.MethodGet, target, nil, cookie, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", target, resp.StatusCode)
		}
	}
}

func TestAccessGuard_TamperedCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	cookie := &http.Cookie{Name: middlewares.SessionCookieName, Value: "not-a-valid-token"}
	resp := env.request(t, http.MethodGet, "/dashboard", nil, cookie, nil)
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("redirect to %q, want /login", loc)
	}
}

func TestRootRedirect(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	sales := env.seedUser(t, "sales1", models.RoleSales)

	resp := env.request(t, http.MethodGet, "/", nil, nil, nil)
	if loc := resp.Header.Get("Location"); resp.StatusCode != http.StatusFound || loc != "/login" {
		t.Errorf("anonymous: status=%d location=%q, want 302 /login", resp.StatusCode, loc)
	}

	resp = env.request(t, http.MethodGet, "/", nil, env.sessionCookie(t, admin), nil)
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Errorf("admin root redirect to %q, want /admin", loc)
	}

	resp = env.request(t, http.MethodGet, "/", nil, env.sessionCookie(t, sales), nil)
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("sales root redirect to %q, want /dashboard", loc)
	}
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)

	form := strings.NewReader("username=sales1&password=password123")
	resp := env.request(t, http.MethodPost, "/login", form, nil, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationForm,
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect to %q, want /dashboard", loc)
	}

	var session string
	for _, c := range resp.Cookies() {
		if c.Name == middlewares.SessionCookieName {
			session = c.Value
			if !c.HttpOnly {
				t.Error("session cookie not httpOnly")
			}
		}
	}
	if session == "" {
		t.Fatal("no session cookie set")
	}
	user, err := env.codec.Decrypt(session)
	if err != nil {
		t.Fatalf("cookie does not decode: %v", err)
	}
	if user.ID != sales.ID || user.Role != models.RoleSales {
		t.Errorf("cookie identity = %+v", user)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "sales1", models.RoleSales)

	form := strings.NewReader("username=sales1&password=wrong")
	resp := env.request(t, http.MethodPost, "/login", form, nil, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationForm,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == middlewares.SessionCookieName && c.Value != "" {
			t.Error("session cookie set on failed login")
		}
	}
}

func TestQREndpoint(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)
	invitation := env.seedInvitation(t, sales.ID)
	cookie := env.sessionCookie(t, sales)

	// No session: bare 401, no redirect.
	resp := env.request(t, http.MethodGet, "/api/qr/"+invitation.UniqueToken, nil, nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", resp.StatusCode)
	}

	// Unknown token: 404.
	resp = env.request(t, http.MethodGet, "/api/qr/nosuchtokn", nil, cookie, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want 404", resp.StatusCode)
	}

	// Known token: JSON payload with an embedded PNG data URL.
	resp = env.request(t, http.MethodGet, "/api/qr/"+invitation.UniqueToken, nil, cookie, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		Token  string `json:"token"`
		URL    string `json:"url"`
		QRCode string `json:"qrcode"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Token != invitation.UniqueToken {
		t.Errorf("token = %q, want %q", payload.Token, invitation.UniqueToken)
	}
	if !strings.Contains(payload.URL, "/invite/"+invitation.UniqueToken) {
		t.Errorf("url = %q, want invite link", payload.URL)
	}
	if !strings.HasPrefix(payload.QRCode, "data:image/png;base64,") {
		t.Errorf("qrcode does not look like a PNG data URL: %.40q", payload.QRCode)
	}
}

func TestGuestFlow_VisitRespondReconsider(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)
	invitation := env.seedInvitation(t, sales.ID)

	// First visit renders the styled page and opens the invitation.
	resp := env.request(t, http.MethodGet, "/invite/"+invitation.UniqueToken, nil, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("visit status = %d, want 200", resp.StatusCode)
	}
	var stored models.Invitation
	if err := env.db.First(&stored, invitation.ID).Error; err != nil {
		t.Fatalf("reload invitation: %v", err)
	}
	if stored.Status != models.StatusOpened || stored.VisitCount != 1 || stored.OpenedAt == nil {
		t.Errorf("after visit: status=%s visits=%d openedAt=%v", stored.Status, stored.VisitCount, stored.OpenedAt)
	}

	// Accept: JSON response carries the discount code.
	body := strings.NewReader(`{"status":"ACCEPTED"}`)
	resp = env.request(t, http.MethodPost, "/invite/"+invitation.UniqueToken+"/respond", body, nil, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("respond status = %d, want 200", resp.StatusCode)
	}
	var respondResult struct {
		Status       models.InvitationStatus `json:"status"`
		DiscountCode string                  `json:"discount_code"`
	}
	decodeJSON(t, resp, &respondResult)
	if respondResult.Status != models.StatusAccepted {
		t.Errorf("respond status = %s, want ACCEPTED", respondResult.Status)
	}
	if respondResult.DiscountCode != stored.DiscountCode {
		t.Errorf("discount code = %q, want %q", respondResult.DiscountCode, stored.DiscountCode)
	}

	// Exactly one notification log row per response, delivered or not.
	var logCount int64
	env.db.Model(&models.NotificationLog{}).Where("invitation_id = ?", invitation.ID).Count(&logCount)
	if logCount != 1 {
		t.Errorf("notification log rows = %d, want 1", logCount)
	}

	// Reconsider reopens the invitation.
	resp = env.request(t, http.MethodPost, "/invite/"+invitation.UniqueToken+"/reconsider", nil, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reconsider status = %d, want 200", resp.StatusCode)
	}
	if err := env.db.First(&stored, invitation.ID).Error; err != nil {
		t.Fatalf("reload invitation: %v", err)
	}
	if stored.Status != models.StatusOpened {
		t.Errorf("after reconsider: status = %s, want OPENED", stored.Status)
	}
	if stored.AcceptedAt == nil {
		t.Error("AcceptedAt lost after reconsider")
	}
}

func TestGuestFlow_RespondValidation(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)
	invitation := env.seedInvitation(t, sales.ID)

	body := strings.NewReader(`{"status":"MAYBE"}`)
	resp := env.request(t, http.MethodPost, "/invite/"+invitation.UniqueToken+"/respond", body, nil, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want 400", resp.StatusCode)
	}

	body = strings.NewReader(`{"status":"ACCEPTED"}`)
	resp = env.request(t, http.MethodPost, "/invite/nosuchtokn/respond", body, nil, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown token code = %d, want 404", resp.StatusCode)
	}
}

func TestGuestFlow_UnknownTokenPage(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/invite/nosuchtokn", nil, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDashboard_CreateAndListInvitations(t *testing.T) {
	env := newTestEnv(t)
	sales := env.seedUser(t, "sales1", models.RoleSales)
	cookie := env.sessionCookie(t, sales)

	style := &models.Style{Name: "经典红", Component: models.StyleComponentClassic, IsActive: true}
	if err := env.db.Create(style).Error; err != nil {
		t.Fatalf("seed style: %v", err)
	}

	body := strings.NewReader(fmt.Sprintf(`{"guest_name":"张先生","language":"zh","style_id":%d}`, style.ID))
	resp := env.request(t, http.MethodPost, "/dashboard/invitations", body, cookie, map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationJSON,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created models.Invitation
	decodeJSON(t, resp, &created)
	if len(created.UniqueToken) != 10 {
		t.Errorf("token length = %d, want 10", len(created.UniqueToken))
	}

	resp = env.request(t, http.MethodGet, "/dashboard/invitations", nil, cookie, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	var list struct {
		Data []models.Invitation `json:"data"`
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	decodeJSON(t, resp, &list)
	if list.Meta.TotalItems != 1 || len(list.Data) != 1 {
		t.Errorf("list = %d items (meta %d), want 1", len(list.Data), list.Meta.TotalItems)
	}
}
