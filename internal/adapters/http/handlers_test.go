package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aduanatrack/core/internal/adapters/storage"
	"github.com/aduanatrack/core/internal/application/services"
	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/config"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func newLoadedTaskService(t *testing.T) *services.TaskService {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := services.NewTaskService(store, logger.NewNop())
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	return svc
}

func TestCreateTaskEndpoint(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(newLoadedTaskService(t), logger.NewNop())

	body := `{"title":"Filter replacement","customsLocation":"Aduana de Tijuana","status":"PENDING","cost":5000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CreateTask(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var tasks []entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Filter replacement", tasks[1].Title)
	assert.NotEmpty(t, tasks[1].ID)
}

func TestUpdateTaskEndpointNotFound(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(newLoadedTaskService(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/ghost", strings.NewReader(`{"status":"COMPLETED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := h.UpdateTask(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestAttachFileEndpoint(t *testing.T) {
	e := newTestEcho()
	svc := newLoadedTaskService(t)
	h := NewTaskHandler(svc, logger.NewNop())
	seedID := svc.Snapshot()[0].ID

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "invoice.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 factura"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+seedID+"/attachments", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(seedID)

	require.NoError(t, h.AttachFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var tasks []entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks[0].Attachments, 1)
	assert.Equal(t, "invoice.pdf", tasks[0].Attachments[0].Name)
}

func TestDashboardEndpoint(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(newLoadedTaskService(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.GetDashboard(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts.Total)
	assert.Equal(t, 1, resp.Counts.Pending)
	assert.Equal(t, 15000.0, resp.TotalInvestment)
	assert.Len(t, resp.RecentActivity, 1)
}

func TestCalendarEndpointRejectsBadParams(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(newLoadedTaskService(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/2026/13/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month", "day")
	c.SetParamValues("2026", "13", "1")

	err := h.GetCalendarDay(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestAdviceEndpointDegradesWithoutCredential(t *testing.T) {
	e := newTestEcho()
	h := NewAdviceHandler(services.NewAdviceService(nil, logger.NewNop()), logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", strings.NewReader(`{"description":"Revisión de tanques"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.RequestAdvice(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AdviceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.Empty(t, resp.Steps)
}

func TestAdviceEndpointRequiresDescription(t *testing.T) {
	e := newTestEcho()
	h := NewAdviceHandler(services.NewAdviceService(nil, logger.NewNop()), logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.RequestAdvice(e.NewContext(req, rec))
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestSwitchUserIssuesSessionToken(t *testing.T) {
	e := newTestEcho()
	h := NewDirectoryHandler(config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "aduanatrack-test",
	}, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"userId":"u3"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.SwitchUser(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Luis Gomez", resp.User.Name)
	assert.Equal(t, entities.UserRoleTechnician, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
}

func runSessionContext(t *testing.T, jwtConfig config.JWTConfig, authHeader string) (identity map[string]string, code int) {
	t.Helper()
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	identity = map[string]string{}
	handler := SessionContext(jwtConfig, logger.NewNop())(func(c echo.Context) error {
		if sub, ok := c.Get("user").(string); ok {
			identity["user"] = sub
		}
		if name, ok := c.Get("user_name").(string); ok {
			identity["user_name"] = name
		}
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return identity, rec.Code
}

func TestSessionContextIdentifiesBearerUser(t *testing.T) {
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "aduanatrack-test"}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u2",
		"name": "Ana Martinez",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtConfig.Secret))
	require.NoError(t, err)

	identity, code := runSessionContext(t, jwtConfig, "Bearer "+token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u2", identity["user"])
	assert.Equal(t, "Ana Martinez", identity["user_name"])
}

func TestSessionContextPassesThroughWithoutToken(t *testing.T) {
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour}

	identity, code := runSessionContext(t, jwtConfig, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, identity)
}

func TestSessionContextNeverRejectsBadTokens(t *testing.T) {
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour}

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer not.a.token",
		"Bearer " + otherKey,
		"Basic dXNlcjpwYXNz",
	} {
		identity, code := runSessionContext(t, jwtConfig, header)
		assert.Equal(t, http.StatusOK, code, "header %q must not reject the request", header)
		assert.Empty(t, identity, "header %q must not identify a user", header)
	}
}

func TestSessionTokenRoundTripsThroughMiddleware(t *testing.T) {
	e := newTestEcho()
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "aduanatrack-test"}
	h := NewDirectoryHandler(jwtConfig, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.SwitchUser(e.NewContext(req, rec)))

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	identity, code := runSessionContext(t, jwtConfig, "Bearer "+resp.Token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", identity["user"])
	assert.Equal(t, "Carlos Rivera", identity["user_name"])
}

func TestSwitchUserUnknownUser(t *testing.T) {
	e := newTestEcho()
	h := NewDirectoryHandler(config.JWTConfig{Secret: "s", ExpiresIn: time.Hour}, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"userId":"u99"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.SwitchUser(e.NewContext(req, rec))
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
