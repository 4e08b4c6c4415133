package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "test", RequestTimeout: 5 * time.Second, BodyLimitMB: 10, CORSOrigins: "*"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
		Inventory: config.InventoryConfig{Timezone: "UTC", Location: time.UTC},
	}
	require.NoError(t, Seed(context.Background(), db, cfg.Auth, nil))

	return New(cfg, db, cache.NewCategories(nil, 0), nil), db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	return body["accessToken"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "inventory_http_requests_total")
}

func TestProductLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "Widget", "unit": "pcs", "category": "Tools", "brand": "Acme", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, status, body)
	product := body["product"].(map[string]interface{})
	id := product["id"].(string)
	assert.Equal(t, model.StatusInStock, product["status"])
	assert.Equal(t, "Administrator", product["createdBy"].(map[string]interface{})["name"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "widget", "unit": "pcs", "category": "Tools", "brand": "Acme", "stock": 1,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Product with this name already exists", body["error"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "Gizmo", "unit": "pcs", "category": "Tools", "brand": "Acme", "stock": "4",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 4, body["product"].(map[string]interface{})["stock"])

	status, body = doJSON(t, app, http.MethodPut, "/api/v1/products/"+id, token, map[string]interface{}{"stock": "3"})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 3, body["product"].(map[string]interface{})["stock"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products/logs?productId="+id, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["history"], 2)
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 10, stats["totalIncrease"])
	assert.EqualValues(t, 7, stats["totalDecrease"])
	assert.EqualValues(t, 8.5, stats["avgChangeAmount"])
	assert.Equal(t, id, body["filters"].(map[string]interface{})["productId"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products?search=wid", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["products"], 1)
	assert.EqualValues(t, 1, body["pagination"].(map[string]interface{})["totalRecords"])
	assert.Equal(t, []interface{}{"Tools"}, body["categories"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products/logs?productId="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["pagination"].(map[string]interface{})["totalRecords"])

	status, body = doJSON(t, app, http.MethodPut, "/api/v1/products/"+id, token, map[string]interface{}{"stock": 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", body["error"])

	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/products/not-a-uuid", token, map[string]interface{}{"stock": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestValidationResponses(t *testing.T) {
	app, _ := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{"name": "X", "stock": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["errors"])

	for _, path := range []string{
		"/api/v1/products?limit=0",
		"/api/v1/products?limit=1001",
		"/api/v1/products?page=abc",
		"/api/v1/products?status=Sold",
		"/api/v1/products/search",
		"/api/v1/products/logs?changeType=restock",
		"/api/v1/products/logs?date=yesterday",
	} {
		status, _ := doJSON(t, app, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, path)
	}
}

func TestAuthorization(t *testing.T) {
	app, db := newTestApp(t)
	testutil.CreateUser(t, db, "viewer@example.com", "Vic", "viewer-pass", model.RoleViewer)
	viewer := login(t, app, "viewer@example.com", "viewer-pass")

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/products", viewer, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/products", viewer, map[string]interface{}{
		"name": "Widget", "unit": "pcs", "category": "Tools", "brand": "Acme", "stock": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/auth/me", viewer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.RoleViewer, body["user"].(map[string]interface{})["role"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", viewer, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", viewer, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestImportAndExport(t *testing.T) {
	app, _ := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("csvFile", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,unit,category,brand,stock\nHammer,pcs,Tools,Acme,5\nHammer,pcs,Tools,Acme,6\n,pcs,Tools,Acme,1\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Import completed", result["message"])
	assert.EqualValues(t, 1, result["successCount"])
	assert.EqualValues(t, 1, result["skipCount"])
	assert.EqualValues(t, 1, result["errorCount"])

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/products/import", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "products-")

	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,unit,category,brand,stock,status,image,createdAt,updatedAt", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Hammer,pcs,Tools,Acme,5,In Stock,"))
}
