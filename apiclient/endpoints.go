package apiclient

import "github.com/jrsteele09/go-internship-session/internal/config"

// userIDPlaceholder is replaced with the escaped user id in Endpoints.UserUpdate.
const userIDPlaceholder = "{id}"

// Endpoints holds the backend paths the client calls, relative to the base URL.
type Endpoints struct {
	Login          string
	Register       string
	UserInfo       string
	UserUpdate     string
	ForgotPassword string
	ResetPassword  string
}

// DefaultEndpoints returns the routes of the portal backend.
func DefaultEndpoints() Endpoints {
	return EndpointsFromConfig(config.API{})
}

func EndpointsFromConfig(cfg config.APIConfig) Endpoints {
	return Endpoints{
		Login:          cfg.GetLoginPath(),
		Register:       cfg.GetRegisterPath(),
		UserInfo:       cfg.GetUserInfoPath(),
		UserUpdate:     cfg.GetUserUpdatePath(),
		ForgotPassword: cfg.GetForgotPasswordPath(),
		ResetPassword:  cfg.GetResetPasswordPath(),
	}
}
