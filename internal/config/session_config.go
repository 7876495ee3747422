package config

type SessionConfig interface {
	GetLoginRoute() string
	GetCompleteProfileRoute() string
	GetHomeRoute() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetLoginRoute() string {
	return GetEnv("ROUTE_LOGIN", "/auth/login")
}

func (Session) GetCompleteProfileRoute() string {
	return GetEnv("ROUTE_COMPLETE_PROFILE", "/auth/complete-profile")
}

func (Session) GetHomeRoute() string {
	return GetEnv("ROUTE_HOME", "/")
}
