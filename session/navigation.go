package session

import "github.com/jrsteele09/go-internship-session/internal/config"

// Navigator moves the hosting application to a route. A web shell would
// redirect, a CLI prints the route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// Routes are the destinations the manager navigates to.
type Routes struct {
	Login           string
	CompleteProfile string
	Home            string
}

func DefaultRoutes() Routes {
	return RoutesFromConfig(config.Session{})
}

func RoutesFromConfig(cfg config.SessionConfig) Routes {
	return Routes{
		Login:           cfg.GetLoginRoute(),
		CompleteProfile: cfg.GetCompleteProfileRoute(),
		Home:            cfg.GetHomeRoute(),
	}
}
