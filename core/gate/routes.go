package gate

import "github.com/harunote/harunote-go/core/credentials"

// Route is a navigable path in the client's route tables.
type Route string

const (
	RouteRoot     Route = "/"
	RouteSignIn   Route = "/signin"
	RouteSignUp   Route = "/signup"
	RouteCalendar Route = "/calendar"
	RouteDiary    Route = "/diary"
	RouteBlog     Route = "/blog"
	RouteAdmin    Route = "/admin"
)

// Shell selects the navigation chrome rendered around a screen.
type Shell string

const (
	// ShellAnonymous shows only the sign-in and sign-up links.
	ShellAnonymous Shell = "anonymous"
	// ShellStandard is the full navigation bar for regular users.
	ShellStandard Shell = "standard"
	// ShellAdmin is the reduced moderation navigation bar.
	ShellAdmin Shell = "admin"
)

// RoutesFor returns the route table for a role.
func RoutesFor(role credentials.Role) []Route {
	switch role {
	case credentials.RoleUser:
		return []Route{RouteSignIn, RouteSignUp, RouteCalendar, RouteDiary, RouteBlog}
	case credentials.RoleAdmin:
		return []Route{RouteSignIn, RouteAdmin, RouteDiary}
	default:
		return []Route{RouteRoot, RouteSignIn, RouteSignUp}
	}
}

// ShellFor returns the navigation shell for a role.
func ShellFor(role credentials.Role) Shell {
	switch role {
	case credentials.RoleUser:
		return ShellStandard
	case credentials.RoleAdmin:
		return ShellAdmin
	default:
		return ShellAnonymous
	}
}

// LandingFor returns the route a fresh navigation lands on for a role:
// admins on the moderation roster, users on the calendar, everyone else on
// sign-in.
func LandingFor(role credentials.Role) Route {
	switch role {
	case credentials.RoleUser:
		return RouteCalendar
	case credentials.RoleAdmin:
		return RouteAdmin
	default:
		return RouteSignIn
	}
}
