package fakebackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-internship-session/fakebackend"
	"github.com/jrsteele09/go-internship-session/internal/config"
	"github.com/jrsteele09/go-internship-session/users"
	fakeuserrepo "github.com/jrsteele09/go-internship-session/users/repofake"
	"github.com/stretchr/testify/require"
)

const password = "Secret123"

type fixture struct {
	backend *fakebackend.Server
	server  *httptest.Server
	student *users.User
	admin   *users.User
}

func newFixture(t *testing.T, options ...fakebackend.Option) *fixture {
	t.Helper()
	backend, err := fakebackend.New(config.EnvVars{}, fakeuserrepo.NewFakeUserRepo(), options...)
	require.NoError(t, err)

	student, err := backend.AddUser(users.User{
		Name: "Ana", Surname: "Kovač", Email: "ana@uni.edu", Role: users.RoleStudent, DepartmentID: "dep-1",
	}, password)
	require.NoError(t, err)

	admin, err := backend.AddUser(users.User{
		Name: "Ada", Surname: "Admin", Email: "admin@uni.edu", Role: users.RoleAdmin,
	}, password)
	require.NoError(t, err)

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	return &fixture{backend: backend, server: server, student: student, admin: admin}
}

type response struct {
	status int
	body   map[string]any
}

func (f *fixture) do(t *testing.T, method, path, accessToken string, body any) response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	_ = json.NewDecoder(resp.Body).Decode(&out.body)
	return out
}

func (f *fixture) login(t *testing.T, email, secret string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, fakebackend.RouteLogin, "", map[string]string{"email": email, "password": secret})
	require.Equal(t, http.StatusOK, resp.status)
	result := resp.body["result"].(map[string]any)
	return result["accessToken"].(string)
}

func TestNew_Validation(t *testing.T) {
	_, err := fakebackend.New(nil, fakeuserrepo.NewFakeUserRepo())
	require.Error(t, err)

	_, err = fakebackend.New(config.EnvVars{}, nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	accessToken := f.login(t, "ana@uni.edu", password)
	claims, err := f.backend.Issuer().Validate(accessToken)
	require.NoError(t, err)
	require.Equal(t, f.student.ID, claims.Subject)
	require.Equal(t, string(users.RoleStudent), claims.Role)

	resp := f.do(t, http.MethodPost, fakebackend.RouteLogin, "", map[string]string{"email": "ana@uni.edu", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Invalid email or password", resp.body["message"])

	resp = f.do(t, http.MethodPost, fakebackend.RouteLogin, "", map[string]string{"email": "nobody@uni.edu", "password": password})
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodPost, fakebackend.RouteLogin, "", nil)
	require.Equal(t, http.StatusBadRequest, resp.status)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newFixture(t, fakebackend.WithLoginRateLimit(2))
	credentials := map[string]string{"email": "ana@uni.edu", "password": "wrong"}

	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, fakebackend.RouteLogin, "", credentials).status)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, fakebackend.RouteLogin, "", credentials).status)
	require.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, fakebackend.RouteLogin, "", credentials).status)
}

func TestUserInfo(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, fakebackend.RouteUserInfo, "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodGet, fakebackend.RouteUserInfo, "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Invalid token", resp.body["message"])

	expired, err := f.backend.Issuer().IssueWithExpiry(f.student.ID, string(f.student.Role), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	resp = f.do(t, http.MethodGet, fakebackend.RouteUserInfo, expired, nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Token expired", resp.body["message"])

	resp = f.do(t, http.MethodGet, fakebackend.RouteUserInfo, f.login(t, "ana@uni.edu", password), nil)
	require.Equal(t, http.StatusOK, resp.status)
	result := resp.body["result"].(map[string]any)
	require.Equal(t, f.student.ID, result["id"])
	require.Equal(t, "STUDENT", result["role"])
	require.Equal(t, "dep-1", result["departmentId"])
	require.NotContains(t, result, "passwordHash")
	require.NotContains(t, result, "PasswordHash")
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	studentToken := f.login(t, "ana@uni.edu", password)
	adminToken := f.login(t, "admin@uni.edu", password)

	resp := f.do(t, http.MethodPut, "/api/users/"+f.student.ID, studentToken, map[string]string{"facultyId": "fac-9"})
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "fac-9", resp.body["result"].(map[string]any)["facultyId"])

	resp = f.do(t, http.MethodPut, "/api/users/"+f.admin.ID, studentToken, map[string]string{"name": "Mallory"})
	require.Equal(t, http.StatusForbidden, resp.status)

	resp = f.do(t, http.MethodPut, "/api/users/"+f.student.ID, adminToken, map[string]string{"phone": "+385 1 234"})
	require.Equal(t, http.StatusOK, resp.status)

	resp = f.do(t, http.MethodGet, fakebackend.RouteUserInfo, studentToken, nil)
	result := resp.body["result"].(map[string]any)
	require.Equal(t, "fac-9", result["facultyId"])
	require.Equal(t, "+385 1 234", result["phone"])
	require.Equal(t, "Ana", result["name"], "fields not in the update are kept")

	resp = f.do(t, http.MethodPut, "/api/users/"+f.student.ID, studentToken, map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.status)

	resp = f.do(t, http.MethodPut, "/api/users/"+f.student.ID, studentToken, map[string]string{"email": "admin@uni.edu"})
	require.Equal(t, http.StatusConflict, resp.status)

	resp = f.do(t, http.MethodPut, "/api/users/missing", adminToken, map[string]string{"name": "Ghost"})
	require.Equal(t, http.StatusNotFound, resp.status)

	resp = f.do(t, http.MethodPut, "/api/users/"+f.student.ID, "", map[string]string{"name": "Anon"})
	require.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	registration := map[string]string{"email": "new@uni.edu", "name": "Nina", "surname": "Novak", "departmentId": "dep-2"}

	resp := f.do(t, http.MethodPost, fakebackend.RouteRegister, "", registration)
	require.Equal(t, http.StatusCreated, resp.status)
	result := resp.body["result"].(map[string]any)
	require.Equal(t, "STUDENT", result["role"])
	require.Equal(t, "dep-2", result["departmentId"])

	mail, ok := f.backend.Mailbox().Last("new@uni.edu", fakebackend.MailWelcome)
	require.True(t, ok)
	require.NoError(t, users.ValidatePasswordStrength(mail.Secret))
	require.NotEmpty(t, f.login(t, "new@uni.edu", mail.Secret))

	resp = f.do(t, http.MethodPost, fakebackend.RouteRegister, "", registration)
	require.Equal(t, http.StatusConflict, resp.status)

	resp = f.do(t, http.MethodPost, fakebackend.RouteRegister, "", map[string]string{"email": "broken", "name": "A", "surname": "B"})
	require.Equal(t, http.StatusBadRequest, resp.status)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, fakebackend.RouteForgotPassword, "", map[string]string{"email": "nobody@uni.edu"})
	require.Equal(t, http.StatusNoContent, resp.status, "unknown addresses are not revealed")
	require.Zero(t, f.backend.Mailbox().Len())

	resp = f.do(t, http.MethodPost, fakebackend.RouteForgotPassword, "", map[string]string{"email": "ana@uni.edu"})
	require.Equal(t, http.StatusNoContent, resp.status)
	mail, ok := f.backend.Mailbox().Last("ana@uni.edu", fakebackend.MailPasswordReset)
	require.True(t, ok)

	reset := map[string]string{"email": "ana@uni.edu", "token": "wrong", "newPassword": "Changed123", "confirmPassword": "Changed123"}
	resp = f.do(t, http.MethodPost, fakebackend.RouteResetPassword, "", reset)
	require.Equal(t, http.StatusBadRequest, resp.status)

	reset["token"] = mail.Secret
	reset["confirmPassword"] = "Different123"
	resp = f.do(t, http.MethodPost, fakebackend.RouteResetPassword, "", reset)
	require.Equal(t, http.StatusBadRequest, resp.status)

	reset["confirmPassword"] = "Changed123"
	resp = f.do(t, http.MethodPost, fakebackend.RouteResetPassword, "", reset)
	require.Equal(t, http.StatusNoContent, resp.status)
	require.NotEmpty(t, f.login(t, "ana@uni.edu", "Changed123"))

	resp = f.do(t, http.MethodPost, fakebackend.RouteResetPassword, "", reset)
	require.Equal(t, http.StatusBadRequest, resp.status, "reset tokens are single use")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newFixture(t, fakebackend.WithResetTokenTTL(time.Nanosecond))

	f.do(t, http.MethodPost, fakebackend.RouteForgotPassword, "", map[string]string{"email": "ana@uni.edu"})
	mail, ok := f.backend.Mailbox().Last("ana@uni.edu", fakebackend.MailPasswordReset)
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	resp := f.do(t, http.MethodPost, fakebackend.RouteResetPassword, "", map[string]string{
		"email": "ana@uni.edu", "token": mail.Secret, "newPassword": "Changed123", "confirmPassword": "Changed123",
	})
	require.Equal(t, http.StatusBadRequest, resp.status)
}

func TestInitialiseDemoUsers(t *testing.T) {
	backend, err := fakebackend.New(config.EnvVars{}, fakeuserrepo.NewFakeUserRepo())
	require.NoError(t, err)
	require.NoError(t, backend.InitialiseDemoUsers())
	require.NoError(t, backend.InitialiseDemoUsers())

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	f := &fixture{backend: backend, server: server}

	for _, email := range []string{"admin@portal.local", "chair@portal.local", "member@portal.local", "student@portal.local"} {
		require.NotEmpty(t, f.login(t, email, fakebackend.DemoPassword), email)
	}
}
