package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginPath() string
	GetRegisterPath() string
	GetUserInfoPath() string
	GetUserUpdatePath() string
	GetForgotPasswordPath() string
	GetResetPasswordPath() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 30*time.Second)
}

func (API) GetLoginPath() string {
	return "/api/auth/login"
}

func (API) GetRegisterPath() string {
	return "/api/auth/register"
}

func (API) GetUserInfoPath() string {
	return "/api/users/me"
}

// GetUserUpdatePath returns the update route; {id} is replaced with the user id.
func (API) GetUserUpdatePath() string {
	return "/api/users/{id}"
}

func (API) GetForgotPasswordPath() string {
	return "/api/auth/forgot-password"
}

func (API) GetResetPasswordPath() string {
	return "/api/auth/reset-password"
}
