package web

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/almacen/internal/auth"
	"github.com/erazemk/almacen/internal/db"
	"github.com/erazemk/almacen/internal/employees"
	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/mail"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

const testSecret = "test-secret"

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fixture struct {
	server   *httptest.Server
	client   *http.Client
	sender   *recordingSender
	db       *sql.DB
	admin    string
	clerk    string
	supplier *model.Supplier
	bolt     *model.InventoryItem
}

func setup(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	sender := &recordingSender{}
	inv := inventory.NewService(inventory.NewSQLUnitOfWork(database))
	emp := employees.NewService(database, sender, "http://almacen.test")

	handler, err := NewRouter(database, testSecret, inv, emp)
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	admin, err := store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)
	require.NoError(t, err)
	clerk, err := store.CreateUser(ctx, database, "clerk", string(hash), model.RoleUser)
	require.NoError(t, err)

	cat, err := store.CreateCategory(ctx, database, "Hardware")
	require.NoError(t, err)
	sup, err := store.CreateSupplier(ctx, database, "Acme")
	require.NoError(t, err)
	bolt, err := inv.CreateItem(ctx, model.InventoryItem{SKU: "BOLT-10", Description: "Hex bolt", CategoryID: cat.ID, MinStock: 10, Active: true}, 5)
	require.NoError(t, err)

	adminToken, err := auth.GenerateToken(testSecret, admin.ID, admin.Username, admin.Role)
	require.NoError(t, err)
	clerkToken, err := auth.GenerateToken(testSecret, clerk.ID, clerk.Username, clerk.Role)
	require.NoError(t, err)

	return &fixture{
		server: server,
		client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
		sender:   sender,
		db:       database,
		admin:    adminToken,
		clerk:    clerkToken,
		supplier: sup,
		bolt:     bolt,
	}
}

type result struct {
	*http.Response
	Body string
}

func (r result) flash() *Flash {
	for _, c := range r.Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			return decodeFlash(c.Value)
		}
	}
	return nil
}

func (f *fixture) do(t *testing.T, req *http.Request, token string) result {
	t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{Response: resp, Body: string(body)}
}

func (f *fixture) get(t *testing.T, path, token string) result {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	return f.do(t, req, token)
}

func (f *fixture) post(t *testing.T, path, token string, form url.Values) result {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(t, req, token)
}

func TestLogin(t *testing.T) {
	f := setup(t)

	res := f.post(t, "/login", "", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.Body, "Invalid username or password.")
	assert.Contains(t, res.Body, `value="admin"`)

	res = f.post(t, "/login", "", url.Values{"username": {"admin"}, "password": {"password"}})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	var token string
	for _, c := range res.Cookies() {
		if c.Name == tokenCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	res = f.get(t, "/", token)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "Stock ledger")
}

func TestLogoutRevokesSession(t *testing.T) {
	f := setup(t)

	res := f.post(t, "/logout", f.admin, nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)

	res = f.get(t, "/", f.admin)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestPagesRequireSession(t *testing.T) {
	f := setup(t)

	for _, path := range []string{"/", "/inventory", "/requisitions", "/employees"} {
		res := f.get(t, path, "")
		assert.Equal(t, http.StatusSeeOther, res.StatusCode, path)
		assert.Equal(t, "/login", res.Header.Get("Location"), path)
	}

	res := f.get(t, "/", "garbage")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	f := setup(t)

	tests := []struct {
		path   string
		token  string
		status int
	}{
		{"/inventory", f.clerk, http.StatusForbidden},
		{"/inventory", f.admin, http.StatusOK},
		{"/purchases", f.clerk, http.StatusForbidden},
		{"/employees", f.clerk, http.StatusForbidden},
		{"/employees", f.admin, http.StatusOK},
		{"/requisitions", f.clerk, http.StatusOK},
		{"/profile", f.clerk, http.StatusOK},
	}
	for _, tt := range tests {
		res := f.get(t, tt.path, tt.token)
		assert.Equal(t, tt.status, res.StatusCode, tt.path)
	}
}

func TestDashboardScopesLedger(t *testing.T) {
	f := setup(t)

	res := f.get(t, "/", f.admin)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "Opening stock")
	assert.Contains(t, res.Body, "Low stock")

	res = f.get(t, "/", f.clerk)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "My issues")
	assert.NotContains(t, res.Body, "Opening stock")
}

func TestPartialResponse(t *testing.T) {
	f := setup(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/inventory?q=bolt", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	res := f.do(t, req, f.admin)

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "BOLT-10")
	assert.NotContains(t, res.Body, "<html")

	res = f.get(t, "/inventory?q=bolt", f.admin)
	assert.Contains(t, res.Body, "<html")
}

func TestPager(t *testing.T) {
	tests := []struct {
		query   string
		total   int
		page    int
		perPage int
		pages   int
	}{
		{"", 0, 1, 10, 1},
		{"per_page=20", 45, 1, 20, 3},
		{"per_page=7", 45, 1, 10, 5},
		{"page=99&per_page=45", 100, 3, 45, 3},
		{"page=-2", 30, 1, 10, 3},
		{"page=abc", 30, 1, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/inventory?"+tt.query, nil)
			p := newPager(r, tt.total)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.pages, p.Pages)
		})
	}

	r := httptest.NewRequest(http.MethodGet, "/inventory?q=bolt&page=2", nil)
	p := newPager(r, 25)
	assert.Equal(t, store.Page{Limit: 10, Offset: 10}, p.Store())
	assert.Equal(t, 11, p.First())
	assert.Equal(t, 20, p.Last())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Contains(t, p.NextURL(), "q=bolt")
	assert.Contains(t, p.NextURL(), "page=3")
}

func TestFlashCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, "warning", "Saved, but mail failed.")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	got := decodeFlash(cookies[0].Value)
	require.NotNil(t, got)
	assert.Equal(t, "warning", got.Kind)
	assert.Equal(t, "Saved, but mail failed.", got.Msg)

	assert.Nil(t, decodeFlash("not base64!"))
	rec = httptest.NewRecorder()
	setFlash(rec, "script", "x")
	assert.Nil(t, decodeFlash(rec.Result().Cookies()[0].Value))
}

func TestFlashShownOnce(t *testing.T) {
	f := setup(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/profile", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	setFlash(rec, "success", "Profile saved.")
	req.AddCookie(rec.Result().Cookies()[0])
	res := f.do(t, req, f.clerk)

	assert.Contains(t, res.Body, "Profile saved.")
	var cleared bool
	for _, c := range res.Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestPurchaseForm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	item := fmt.Sprint(f.bolt.ID)
	supplier := fmt.Sprint(f.supplier.ID)

	t.Run("invalid line keeps input", func(t *testing.T) {
		res := f.post(t, "/purchases/new", f.admin, url.Values{
			"supplier":            {supplier},
			"lines[0][item]":      {item},
			"lines[0][qty]":       {"abc"},
			"lines[0][unit_price]": {"1.50"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
		assert.Contains(t, res.Body, "Line 1: quantity must be a positive whole number.")
		assert.Contains(t, res.Body, `value="abc"`)
		assert.Contains(t, res.Body, `value="1.50"`)
	})

	t.Run("empty order", func(t *testing.T) {
		res := f.post(t, "/purchases/new", f.admin, url.Values{"supplier": {supplier}})
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
		assert.Contains(t, res.Body, "Add at least one line.")
	})

	t.Run("recorded", func(t *testing.T) {
		res := f.post(t, "/purchases/new", f.admin, url.Values{
			"supplier":             {supplier},
			"ref":                  {"INV-7"},
			"lines[0][item]":       {item},
			"lines[0][qty]":        {"20"},
			"lines[0][unit_price]": {"0.25"},
			"lines[1][item]":       {""},
			"lines[1][qty]":        {""},
			"lines[1][unit_price]": {""},
		})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		location := res.Header.Get("Location")
		assert.True(t, strings.HasPrefix(location, "/purchases/"), location)
		require.NotNil(t, res.flash())
		assert.Equal(t, "success", res.flash().Kind)

		got, err := store.GetItem(ctx, f.db, f.bolt.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, got.Stock)
		assert.False(t, got.LowStock())

		detail := f.get(t, location, f.admin)
		assert.Equal(t, http.StatusOK, detail.StatusCode)
		assert.Contains(t, detail.Body, "INV-7")
		assert.Contains(t, detail.Body, "5.00")
	})
}

func TestRequisitionForm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	item := fmt.Sprint(f.bolt.ID)

	res := f.post(t, "/requisitions/new", f.clerk, url.Values{
		"lines[0][item]": {item},
		"lines[0][qty]":  {"50"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "Not enough stock for BOLT-10: 5 available, 50 requested.")

	got, err := store.GetItem(ctx, f.db, f.bolt.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	res = f.post(t, "/requisitions/new", f.clerk, url.Values{
		"note":           {"Workshop"},
		"lines[0][item]": {item},
		"lines[0][qty]":  {"2"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	location := res.Header.Get("Location")

	assert.Equal(t, http.StatusOK, f.get(t, location, f.clerk).StatusCode)
	assert.Equal(t, http.StatusOK, f.get(t, location, f.admin).StatusCode)

	// Another user's requisition is hidden from the clerk.
	res = f.post(t, "/requisitions/new", f.admin, url.Values{
		"lines[0][item]": {item},
		"lines[0][qty]":  {"1"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, http.StatusForbidden, f.get(t, res.Header.Get("Location"), f.clerk).StatusCode)

	list := f.get(t, "/requisitions", f.clerk)
	assert.Contains(t, list.Body, "Workshop")
	assert.Contains(t, list.Body, "1 in total")
}

func TestAdjustForm(t *testing.T) {
	f := setup(t)
	path := fmt.Sprintf("/inventory/%d/adjust", f.bolt.ID)

	res := f.post(t, path, f.admin, url.Values{"delta": {"-9"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "5 available, 9 requested")

	res = f.post(t, path, f.admin, url.Values{"delta": {"-2"}, "note": {"Broken"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.NotNil(t, res.flash())
	assert.Equal(t, "Stock of BOLT-10 is now 3.", res.flash().Msg)
}

func TestItemForms(t *testing.T) {
	f := setup(t)

	res := f.post(t, "/inventory/new", f.admin, url.Values{"sku": {""}, "category": {"1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "SKU required.")

	res = f.post(t, "/inventory/new", f.admin, url.Values{
		"sku": {"BOLT-10"}, "category": {fmt.Sprint(f.bolt.CategoryID)}, "active": {"1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "already exists")

	res = f.post(t, "/inventory/new", f.admin, url.Values{
		"sku": {"WASHER-6"}, "category": {fmt.Sprint(f.bolt.CategoryID)},
		"opening_stock": {"12"}, "active": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	washer, err := store.GetItemBySKU(context.Background(), f.db, "WASHER-6")
	require.NoError(t, err)
	require.NotNil(t, washer)
	assert.Equal(t, 12, washer.Stock)
	assert.Equal(t, "washer-6", washer.Slug)

	res = f.post(t, fmt.Sprintf("/inventory/%d/edit", washer.ID), f.admin, url.Values{
		"sku": {"WASHER-6"}, "description": {"Flat washer"}, "category": {fmt.Sprint(washer.CategoryID)},
		"min_stock": {"3"}, "active": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	washer, err = store.GetItem(context.Background(), f.db, washer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flat washer", washer.Description)
	assert.Equal(t, 12, washer.Stock)
}

func TestExportAndLabels(t *testing.T) {
	f := setup(t)

	res := f.get(t, "/inventory/export.xlsx", f.admin)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(res.Body, "PK"))

	res = f.get(t, fmt.Sprintf("/inventory/%d/barcode.png", f.bolt.ID), f.admin)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))

	res = f.get(t, fmt.Sprintf("/inventory/labels?ids=%d", f.bolt.ID), f.admin)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "BOLT-10")
	assert.Contains(t, res.Body, "barcode.png")

	res = f.get(t, "/inventory/labels", f.admin)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
}

func TestEmployeeActivation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res := f.post(t, "/employees/new", f.admin, url.Values{
		"first_name": {"Ana"}, "last_name": {"Novak"}, "email": {"ana@example.com"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Len(t, f.sender.sent, 1)

	list, err := store.ListEmployees(ctx, f.db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	token := list[0].ActivationToken
	require.NotEmpty(t, token)
	assert.Contains(t, f.sender.sent[0].Text, "/activate/"+token+"/")

	page := f.get(t, "/activate/"+token+"/", "")
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.Body, "Welcome, Ana Novak")

	res = f.post(t, "/activate/"+token+"/", "", url.Values{
		"username": {"ana"}, "password": {"longenough"}, "confirm": {"different1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "passwords do not match")

	res = f.post(t, "/activate/"+token+"/", "", url.Values{
		"username": {"ana"}, "password": {"longenough"}, "confirm": {"longenough"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	user, err := store.GetUserByUsername(ctx, f.db, "ana")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, model.RoleUser, user.Role)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/activate/"+token+"/", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/activate/nonsense/", "").StatusCode)
}

func TestEmployeeMailFailure(t *testing.T) {
	f := setup(t)
	f.sender.err = errors.New("smtp down")

	res := f.post(t, "/employees/new", f.admin, url.Values{
		"first_name": {"Bor"}, "last_name": {"Kos"}, "email": {"bor@example.com"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.NotNil(t, res.flash())
	assert.Equal(t, "warning", res.flash().Kind)

	list, err := store.ListEmployees(context.Background(), f.db)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	page := f.get(t, "/employees", f.admin)
	assert.Contains(t, page.Body, "Resend invitation")
}

func TestProfilePasswordChange(t *testing.T) {
	f := setup(t)

	res := f.post(t, "/profile", f.clerk, url.Values{
		"first_name": {"Cl"}, "current_password": {"wrong"}, "new_password": {"newpassword"}, "confirm_password": {"newpassword"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, res.Body, "Current password is incorrect.")

	res = f.post(t, "/profile", f.clerk, url.Values{
		"first_name": {"Clara"}, "last_name": {"Oak"}, "email": {"clara@example.com"},
		"current_password": {"password"}, "new_password": {"newpassword"}, "confirm_password": {"newpassword"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	user, err := store.GetUserByUsername(context.Background(), f.db, "clerk")
	require.NoError(t, err)
	assert.Equal(t, "Clara Oak", user.DisplayName())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword")))
}

func TestLogoUpload(t *testing.T) {
	f := setup(t)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/logo", "").StatusCode)

	img := image.NewNRGBA(image.Rect(0, 0, 600, 300))
	for x := range 600 {
		img.Set(x, 150, color.NRGBA{R: 200, A: 255})
	}
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(pngData.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/settings/logo", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := f.do(t, req, f.admin)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res = f.get(t, "/logo", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	cfg, err := png.DecodeConfig(strings.NewReader(res.Body))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)

	page := f.get(t, "/", f.clerk)
	assert.Contains(t, page.Body, `src="/logo"`)
}

func TestUserAdministration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	clerk, err := store.GetUserByUsername(ctx, f.db, "clerk")
	require.NoError(t, err)

	res := f.post(t, fmt.Sprintf("/users/%d/role", clerk.ID), f.admin, url.Values{"role": {model.RoleManager}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	// The session picks up the new role without logging in again.
	assert.Equal(t, http.StatusOK, f.get(t, "/inventory", f.clerk).StatusCode)

	admin, err := store.GetUserByUsername(ctx, f.db, "admin")
	require.NoError(t, err)
	res = f.post(t, fmt.Sprintf("/users/%d/role", admin.ID), f.admin, url.Values{"role": {model.RoleUser}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.NotNil(t, res.flash())
	assert.Equal(t, "error", res.flash().Kind)

	res = f.post(t, "/users", f.admin, url.Values{"username": {"svc"}, "password": {"longenough"}, "role": {model.RoleUser}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	res = f.post(t, "/users", f.admin, url.Values{"username": {"svc"}, "password": {"longenough"}, "role": {model.RoleUser}})
	require.NotNil(t, res.flash())
	assert.Equal(t, "That username is already taken.", res.flash().Msg)
}

func TestCategoryDeleteInUse(t *testing.T) {
	f := setup(t)
	path := fmt.Sprintf("/categories/%d/delete", f.bolt.CategoryID)

	res := f.post(t, path, f.admin, nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/categories", res.Header.Get("Location"))
	require.NotNil(t, res.flash())
	assert.Equal(t, "error", res.flash().Kind)
	assert.Contains(t, res.flash().Msg, "still has items")

	cat, err := store.GetCategory(context.Background(), f.db, f.bolt.CategoryID)
	require.NoError(t, err)
	require.NotNil(t, cat)

	empty, err := store.CreateCategory(context.Background(), f.db, "Unused")
	require.NoError(t, err)
	res = f.post(t, fmt.Sprintf("/categories/%d/delete", empty.ID), f.admin, nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.NotNil(t, res.flash())
	assert.Equal(t, "success", res.flash().Kind)
}
