package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/table-order/config"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/kds"
	"github.com/yeremiapane/table-order/router"
	"github.com/yeremiapane/table-order/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiResponse struct {
	Status    bool            `json:"status"`
	Message   string          `json:"message"`
	ErrorKind string          `json:"error_kind"`
	Data      json.RawMessage `json:"data"`
}

type client struct {
	t    *testing.T
	base string
}

func (c client) do(method, path string, body io.Reader, contentType string, headers map[string]string) (int, apiResponse) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var out apiResponse
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func (c client) json(method, path string, body interface{}, headers map[string]string) (int, apiResponse) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}
	return c.do(method, path, reader, "application/json", headers)
}

func (c client) createMenu(token, name string, price int) uint {
	c.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("name", name)
	w.WriteField("price", strconv.Itoa(price))
	part, err := w.CreateFormFile("image", strings.ToLower(name)+".jpg")
	require.NoError(c.t, err)
	part.Write([]byte("jpeg"))
	require.NoError(c.t, w.Close())

	code, resp := c.do(http.MethodPost, "/admin/menus", &body, w.FormDataContentType(), map[string]string{"Authorization": "Bearer " + token})
	require.Equal(c.t, http.StatusCreated, code, resp.Message)
	var item struct {
		ID uint `json:"id"`
	}
	require.NoError(c.t, json.Unmarshal(resp.Data, &item))
	return item.ID
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAdmin(db, "admin@example.com", "admin-pass"))
	return db
}

// TestEndToEndIntegration walks one table from QR token to served order:
// admin login, menu and table setup, cart, confirmation, kitchen display
// over websocket, serving and history.
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		JWTTTL:             time.Hour,
		UploadDir:          t.TempDir(),
		PublicBaseURL:      "http://localhost/uploads",
		CORSOrigin:         "http://localhost:3000",
		QueryTimeout:       2 * time.Second,
		ReadRetries:        1,
		RetryBackoff:       time.Millisecond,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	hub := kds.NewHub()
	relay := services.NewOutboxRelay(db, time.Hour, hub)

	srv := httptest.NewServer(router.SetupRouter(db, cfg, hub))
	defer srv.Close()
	c := client{t: t, base: srv.URL}

	// Staff login
	code, resp := c.json(http.MethodPost, "/login", gin.H{"email": "admin@example.com", "password": "admin-pass"}, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	admin := map[string]string{"Authorization": "Bearer " + login.Token}

	// Menu and table token
	teaID := c.createMenu(login.Token, "Tea", 1500)
	riceID := c.createMenu(login.Token, "Rice", 3000)

	code, resp = c.json(http.MethodPost, "/admin/tables/2/token", gin.H{"token": "qr-two"}, admin)
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, resp = c.json(http.MethodGet, "/session/validate?table=2&token=qr-two", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"valid":true`)

	// Kitchen display
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/kitchen?token=" + login.Token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Customer cart
	table := map[string]string{"X-Table-Number": "2", "X-Table-Token": "qr-two"}
	for _, id := range []uint{teaID, teaID, riceID} {
		code, resp = c.json(http.MethodPost, "/cart/items", gin.H{"item_id": id}, table)
		require.Equal(t, http.StatusOK, code, resp.Message)
	}

	code, resp = c.json(http.MethodGet, "/cart", nil, table)
	require.Equal(t, http.StatusOK, code)
	var cart services.CartView
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Equal(t, int64(6000), cart.Total)

	code, resp = c.json(http.MethodPost, "/cart/confirm", nil, table)
	require.Equal(t, http.StatusCreated, code, resp.Message)

	n, err := relay.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)
	var event struct {
		Event string `json:"event"`
		Data  struct {
			ID    uint  `json:"id"`
			Total int64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "order.confirmed", event.Event)
	assert.Equal(t, int64(6000), event.Data.Total)

	// Kitchen serves
	code, resp = c.json(http.MethodGet, "/kitchen/orders", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"total":6000`)

	served := "/kitchen/orders/" + strconv.Itoa(int(event.Data.ID)) + "/served"
	code, resp = c.json(http.MethodPost, served, nil, admin)
	require.Equal(t, http.StatusOK, code, resp.Message)

	_, err = relay.ProcessOnce(context.Background())
	require.NoError(t, err)
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"order.served"`)

	code, resp = c.json(http.MethodGet, "/kitchen/history", nil, admin)
	require.Equal(t, http.StatusOK, code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	assert.Len(t, history, 1)

	code, resp = c.json(http.MethodGet, "/kitchen/orders", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", string(resp.Data))

	code, resp = c.json(http.MethodGet, "/admin/dashboard/stats", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"revenue_display":"6,000 Kyats"`)

	// Token rotation locks the old QR code out
	code, _ = c.json(http.MethodPost, "/admin/tables/2/token", nil, admin)
	require.Equal(t, http.StatusCreated, code)
	code, resp = c.json(http.MethodGet, "/cart", nil, table)
	assert.Equal(t, http.StatusUnauthorized, code)
}
