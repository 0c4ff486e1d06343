package domain

import "strings"

const (
	PathLanding    = "/"
	PathLogin      = "/auth/login"
	PathSignup     = "/auth/signup"
	PathOnboarding = "/onboarding"
	PathHome       = "/home"
)

// PageKind classifies a navigation target for the route gate.
type PageKind int

const (
	PagePublic PageKind = iota
	PageAuth
	PageOnboarding
	PageProtected
)

func (k PageKind) String() string {
	switch k {
	case PageAuth:
		return "auth"
	case PageOnboarding:
		return "onboarding"
	case PageProtected:
		return "protected"
	default:
		return "public"
	}
}

type DashboardRoute struct {
	Href        string `json:"href"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var DashboardRoutes = []DashboardRoute{
	{Href: "/home", Title: "Home", Description: "Dashboard overview and summary"},
	{Href: "/jobs", Title: "Jobs", Description: "Track and manage your job applications"},
	{Href: "/analytics", Title: "Analytics", Description: "View statistics and insights"},
	{Href: "/profile", Title: "Profile", Description: "Manage your personal profile"},
	{Href: "/settings", Title: "Settings", Description: "Configure application settings"},
	{Href: "/help", Title: "Help", Description: "Find help and support resources"},
}

// FindDashboardRoute returns the catalog entry for a protected path.
func FindDashboardRoute(path string) (DashboardRoute, bool) {
	for _, r := range DashboardRoutes {
		if underPrefix(path, r.Href) {
			return r, true
		}
	}
	return DashboardRoute{}, false
}

// ClassifyPath maps a request path to its page kind. Paths outside the
// dashboard, onboarding and login/signup are public.
func ClassifyPath(path string) PageKind {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	switch {
	case path == PathLogin || path == PathSignup:
		return PageAuth
	case underPrefix(path, PathOnboarding):
		return PageOnboarding
	}
	if _, ok := FindDashboardRoute(path); ok {
		return PageProtected
	}
	return PagePublic
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
