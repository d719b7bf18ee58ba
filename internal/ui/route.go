package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// RouteKind names a screen.
type RouteKind int

const (
	RouteHome RouteKind = iota
	RouteScene
	RoutePractice
)

// Route is a screen plus the identifier it is opened for.
type Route struct {
	Kind RouteKind
	ID   int64
}

func HomeRoute() Route { return Route{Kind: RouteHome} }

func SceneRoute(id int64) Route { return Route{Kind: RouteScene, ID: id} }

func PracticeRoute(id int64) Route { return Route{Kind: RoutePractice, ID: id} }

// ParseRoute accepts "/", "/scene/:id" and "/practice/:id". Identifiers
// must be positive integers.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return HomeRoute(), nil
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 {
		return Route{}, fmt.Errorf("ui: unknown route %q", s)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return Route{}, fmt.Errorf("ui: route %q: invalid id %q", s, parts[1])
	}
	switch parts[0] {
	case "scene":
		return SceneRoute(id), nil
	case "practice":
		return PracticeRoute(id), nil
	}
	return Route{}, fmt.Errorf("ui: unknown route %q", s)
}

func (r Route) String() string {
	switch r.Kind {
	case RouteScene:
		return "/scene/" + strconv.FormatInt(r.ID, 10)
	case RoutePractice:
		return "/practice/" + strconv.FormatInt(r.ID, 10)
	default:
		return "/"
	}
}
