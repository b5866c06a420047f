package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/db"
	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

const testSecret = "handler-test-secret-0123456789abcdef"

type testApp struct {
	t         *testing.T
	srv       *httptest.Server
	repo      *db.Repository
	users     *controller.UserService
	warehouse *controller.WarehouseService
	logs      *controller.LogService
}

func newTestApp(t *testing.T) *testApp {
	logger := zaptest.NewLogger(t)

	repo, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "backoffice.db")), logger)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })

	audit := controller.NewAuditor(repo, events.NopProducer{}, logger)
	app := &testApp{
		t:         t,
		repo:      repo,
		users:     controller.NewUserService(repo, auth.NewHasher(4), audit, logger),
		warehouse: controller.NewWarehouseService(repo, audit, events.NopProducer{}, logger),
		logs:      controller.NewLogService(repo, audit, logger),
	}

	h, err := NewHandler(Services{
		Orders:    controller.NewOrderService(repo, audit, logger),
		Warehouse: app.warehouse,
		Personnel: controller.NewPersonnelService(repo, audit, logger),
		Logs:      app.logs,
		Dashboard: controller.NewDashboardService(repo, logger),
		Users:     app.users,
		Health:    repo,
	}, auth.NewManager(testSecret, time.Hour, false, repo, logger), Options{
		PageSize:    10,
		LogPageSize: 20,
	}, logger)
	require.NoError(t, err)

	app.srv = httptest.NewServer(NewRouter(h))
	t.Cleanup(app.srv.Close)
	return app
}

func (a *testApp) createUser(username string, role models.Role, modules ...models.Module) {
	_, err := a.users.Create(context.Background(), models.SystemActor, controller.NewUser{
		Username: username,
		Password: "secret-password",
		Role:     role,
		Modules:  modules,
	})
	require.NoError(a.t, err)
}

type testClient struct {
	app  *testApp
	jar  *cookiejar.Jar
	http *http.Client
}

func (a *testApp) client() *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &testClient{
		app: a,
		jar: jar,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// loggedIn returns a client holding a session of username.
func (a *testApp) loggedIn(username string) *testClient {
	c := a.client()
	res := c.post("/login", url.Values{"username": {username}, "password": {"secret-password"}})
	require.Equal(a.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(a.t, "/", res.Header.Get("Location"))
	return c
}

type response struct {
	*http.Response
	body string
}

// flash decodes the flash message set by the response, if any.
func (r *response) flash() *Flash {
	for _, c := range r.Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			f, _ := decodeFlash(c.Value)
			return f
		}
	}
	return nil
}

func (c *testClient) do(req *http.Request) *response {
	res, err := c.http.Do(req)
	require.NoError(c.app.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.app.t, err)
	return &response{Response: res, body: string(body)}
}

func (c *testClient) get(path string) *response {
	req, err := http.NewRequest(http.MethodGet, c.app.srv.URL+path, nil)
	require.NoError(c.app.t, err)
	return c.do(req)
}

func (c *testClient) post(path string, form url.Values) *response {
	req, err := http.NewRequest(http.MethodPost, c.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) session() *auth.Session {
	u, err := url.Parse(c.app.srv.URL)
	require.NoError(c.app.t, err)
	for _, cookie := range c.jar.Cookies(u) {
		if cookie.Name == auth.CookieName {
			s, err := auth.ParseToken(cookie.Value, testSecret)
			require.NoError(c.app.t, err)
			return s
		}
	}
	c.app.t.Fatal("no session cookie")
	return nil
}

// submit posts a dashboard action with a valid CSRF token.
func (c *testClient) submit(path, action string, fields url.Values) *response {
	form := url.Values{}
	for k, v := range fields {
		form[k] = v
	}
	form.Set("action", action)
	form.Set("csrf_token", c.session().CSRFToken)
	return c.post(path, form)
}

func requireFlash(t *testing.T, res *response, kind FlashKind, message string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	f := res.flash()
	require.NotNil(t, f, "expected a flash message")
	assert.Equal(t, kind, f.Kind)
	assert.Equal(t, message, f.Message)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	res := app.client().get("/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", res.body)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthzUnavailable(t *testing.T) {
	logger := zaptest.NewLogger(t)
	h, err := NewHandler(Services{Health: downPinger{}},
		auth.NewManager(testSecret, time.Hour, false, nil, logger), Options{}, logger)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", rec.Body.String())
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	for _, path := range []string{"/", "/orders", "/warehouse", "/personnel", "/logs"} {
		res := c.get(path)
		assert.Equal(t, http.StatusSeeOther, res.StatusCode, path)
		assert.Equal(t, auth.LoginPath, res.Header.Get("Location"), path)
	}

	res := c.get("/login")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.body, `name="password"`)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)

	t.Run("bad password", func(t *testing.T) {
		c := app.client()
		res := c.post("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
		requireFlash(t, res, FlashError, msgBadCredentials)
		assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))

		page := c.get("/login")
		assert.Contains(t, page.body, msgBadCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		res := app.client().post("/login", url.Values{"username": {"mallory"}, "password": {"secret-password"}})
		requireFlash(t, res, FlashError, msgBadCredentials)
	})

	t.Run("success", func(t *testing.T) {
		c := app.loggedIn("alice")
		s := c.session()
		assert.Equal(t, "alice", s.Username)
		assert.True(t, s.IsAdmin())
		assert.NotEmpty(t, s.CSRFToken)

		res := c.get("/login")
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/", res.Header.Get("Location"))

		res = c.get("/")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, res.body, "Logout alice")
		assert.Contains(t, res.body, "Login")
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	res := c.submit("/logout", "", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))

	res = c.get("/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))

	result, err := app.logs.List(context.Background(), controller.LogFilter{Action: "Logout"}, query.PageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Total)
}

func TestEveryPageRenders(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	for _, path := range []string{"/", "/orders", "/warehouse", "/personnel", "/logs"} {
		res := c.get(path)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Contains(t, res.Header.Get("Content-Type"), "text/html", path)
	}
}

func TestDashboardHonoursModules(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	app.createUser("bob", models.RoleStaff, models.ModuleOrders)

	_, err := app.warehouse.Create(context.Background(), models.SystemActor, &models.WarehouseItem{
		ProductCode: "SECRET-1",
		ProductName: "Hidden Bolt",
		Quantity:    1,
		MinQuantity: 5,
	})
	require.NoError(t, err)

	staff := app.loggedIn("bob").get("/")
	require.Equal(t, http.StatusOK, staff.StatusCode)
	assert.NotContains(t, staff.body, "SECRET-1")
	assert.NotContains(t, staff.body, "Product Added")
	assert.NotContains(t, staff.body, "Low stock")

	admin := app.loggedIn("alice").get("/")
	require.Equal(t, http.StatusOK, admin.StatusCode)
	assert.Contains(t, admin.body, "<td>SECRET-1</td>")
	assert.Contains(t, admin.body, "Product Added")
}

func TestPostWithoutCSRFToken(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	res := c.post("/orders", url.Values{
		"action":        {"add_order"},
		"order_number":  {"SO-1001"},
		"customer_name": {"Acme Ltd"},
		"order_date":    {"2024-03-01"},
	})
	requireFlash(t, res, FlashError, msgInvalidCSRF)
	assert.Equal(t, "/orders", res.Header.Get("Location"))

	page := c.get("/orders")
	assert.NotContains(t, page.body, "SO-1001")
	assert.Contains(t, page.body, msgInvalidCSRF)
}

func TestOrderActions(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	order := url.Values{
		"order_number":   {"SO-1001"},
		"customer_name":  {"Acme Ltd"},
		"customer_email": {"buyer@acme.test"},
		"order_date":     {"2024-03-01"},
		"total_amount":   {"99,50"},
	}
	requireFlash(t, c.submit("/orders", "add_order", order), FlashSuccess, "Order created successfully.")

	page := c.get("/orders?search=SO-1001")
	require.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.body, "SO-1001")
	assert.Contains(t, page.body, "99.50")

	requireFlash(t, c.submit("/orders", "add_order", order), FlashError, "Order number already exists.")

	order.Set("order_number", "SO-1002")
	order.Set("order_date", "01/03/2024")
	requireFlash(t, c.submit("/orders", "add_order", order), FlashError,
		"Order date must be a date (YYYY-MM-DD).")

	requireFlash(t, c.submit("/orders", "update_status", url.Values{
		"order_id":   {"999"},
		"new_status": {"shipped"},
	}), FlashError, "Order not found.")

	requireFlash(t, c.submit("/orders", "delete_order", url.Values{"order_id": {"abc"}}),
		FlashError, "Invalid record id.")

	requireFlash(t, c.submit("/orders", "archive_order", nil), FlashError, "Unknown action.")
}

func TestModulePermissions(t *testing.T) {
	app := newTestApp(t)
	app.createUser("bob", models.RoleStaff, models.ModuleOrders)
	c := app.loggedIn("bob")

	res := c.get("/orders")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, res.body, `href="/warehouse"`)

	for _, path := range []string{"/warehouse", "/personnel", "/logs"} {
		res := c.get(path)
		requireFlash(t, res, FlashError, msgForbidden)
		assert.Equal(t, "/", res.Header.Get("Location"), path)
	}

	res = c.submit("/warehouse", "add_product", url.Values{
		"product_code": {"P-1"},
		"product_name": {"Bolt"},
	})
	requireFlash(t, res, FlashError, msgForbidden)

	items, err := app.warehouse.List(context.Background(), controller.WarehouseFilter{}, query.PageOf(1, 10))
	require.NoError(t, err)
	assert.Empty(t, items.Items)
}

func TestRevokedAccessTakesEffectImmediately(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createUser("bob", models.RoleStaff, models.ModuleOrders, models.ModuleLogs)
	c := app.loggedIn("bob")

	assert.Equal(t, http.StatusOK, c.get("/logs").StatusCode)

	require.NoError(t, app.repo.Exec(ctx,
		"DELETE FROM user_permissions WHERE module = ? AND user_id = (SELECT id FROM users WHERE username = ?)",
		models.ModuleLogs, "bob"))
	res := c.get("/logs")
	requireFlash(t, res, FlashError, msgForbidden)
	assert.Equal(t, http.StatusOK, c.get("/orders").StatusCode)

	require.NoError(t, app.repo.Exec(ctx, "UPDATE users SET is_active = ? WHERE username = ?", false, "bob"))
	res = c.get("/orders")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))
}

func TestWarehouseQuantityUpdate(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	requireFlash(t, c.submit("/warehouse", "add_product", url.Values{
		"product_code": {"P-100"},
		"product_name": {"Hex bolt"},
		"quantity":     {"10"},
		"min_quantity": {"5"},
		"unit_price":   {"0.25"},
		"category":     {"Fasteners"},
	}), FlashSuccess, "Product added successfully.")

	items, err := app.warehouse.List(context.Background(), controller.WarehouseFilter{Search: "P-100"}, query.PageOf(1, 10))
	require.NoError(t, err)
	require.Len(t, items.Items, 1)
	id := strconv.FormatUint(uint64(items.Items[0].ID), 10)

	requireFlash(t, c.submit("/warehouse", "update_quantity", url.Values{
		"product_id":   {id},
		"new_quantity": {"4"},
		"reason":       {"Damaged in transit"},
	}), FlashSuccess, "Quantity updated successfully.")

	requireFlash(t, c.submit("/warehouse", "update_quantity", url.Values{
		"product_id":   {id},
		"new_quantity": {"four"},
	}), FlashError, "New quantity must be a whole number.")

	movements, err := app.warehouse.Movements(context.Background(), items.Items[0].ID, 5)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementOut, movements[0].MovementType)
	assert.Equal(t, 6, movements[0].Quantity)

	page := c.get("/warehouse?item=" + id)
	require.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.body, "Damaged in transit")
	assert.Contains(t, page.body, `class="low"`)
}

func TestPersonnelActions(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	employee := url.Values{
		"employee_code": {"E-001"},
		"first_name":    {"Grace"},
		"last_name":     {"Hopper"},
		"email":         {"grace@example.test"},
		"department":    {"Engineering"},
		"hire_date":     {"2023-09-01"},
		"salary":        {"5200"},
	}
	requireFlash(t, c.submit("/personnel", "add_employee", employee), FlashSuccess, "Employee added successfully.")
	requireFlash(t, c.submit("/personnel", "add_employee", employee), FlashError,
		"Employee code or email already exists.")

	employee.Set("employee_code", "E-002")
	employee.Set("email", "other@example.test")
	employee.Set("salary", "-1")
	requireFlash(t, c.submit("/personnel", "add_employee", employee), FlashError, "Salary must not be negative.")

	page := c.get("/personnel?department=Engineering")
	require.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.body, "Grace Hopper")
	assert.Contains(t, page.body, "5200.00")
}

func TestClearOldLogs(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	app.createUser("bob", models.RoleStaff, models.ModuleLogs)

	staff := app.loggedIn("bob")
	page := staff.get("/logs")
	require.Equal(t, http.StatusOK, page.StatusCode)
	assert.NotContains(t, page.body, "clear_old_logs")

	requireFlash(t, staff.submit("/logs", "clear_old_logs", url.Values{"days_to_keep": {"1"}}),
		FlashError, msgForbidden)

	admin := app.loggedIn("alice")
	page = admin.get("/logs")
	assert.Contains(t, page.body, "clear_old_logs")

	requireFlash(t, admin.submit("/logs", "clear_old_logs", nil),
		FlashSuccess, "Deleted 0 logs older than 30 days.")

	result, err := app.logs.List(context.Background(), controller.LogFilter{Action: "Logs Purged"}, query.PageOf(1, 10))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Deleted 0 logs older than 30 days", result.Items[0].Details)
}

func TestExportLogs(t *testing.T) {
	app := newTestApp(t)
	app.createUser("alice", models.RoleAdmin)
	c := app.loggedIn("alice")

	t.Run("missing dates", func(t *testing.T) {
		res := c.submit("/logs", "export_logs", url.Values{"export_date_from": {"2024-01-01"}})
		requireFlash(t, res, FlashError, "Start and end dates are required.")
		assert.Equal(t, "/logs", res.Header.Get("Location"))
	})

	t.Run("reversed range", func(t *testing.T) {
		res := c.submit("/logs", "export_logs", url.Values{
			"export_date_from": {"2024-02-01"},
			"export_date_to":   {"2024-01-01"},
		})
		requireFlash(t, res, FlashError, "Start date must not be after end date.")
	})

	t.Run("csv", func(t *testing.T) {
		today := time.Now().UTC().Format("2006-01-02")
		res := c.submit("/logs", "export_logs", url.Values{
			"export_date_from": {today},
			"export_date_to":   {today},
			"format":           {"csv"},
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "text/csv; charset=utf-8", res.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="logs_`+today+`_to_`+today+`.csv"`,
			res.Header.Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(res.body, "Timestamp,User,Action,Details,IP\n"))
		assert.Contains(t, res.body, ",alice,Login,")
	})

	t.Run("xlsx", func(t *testing.T) {
		res := c.submit("/logs", "export_logs", url.Values{
			"export_date_from": {"2024-01-01"},
			"export_date_to":   {"2024-01-31"},
			"format":           {"xlsx"},
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			res.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(res.body, "PK"), "xlsx is a zip archive")
	})
}
