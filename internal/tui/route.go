package tui

import (
	"fmt"
	"net/url"
	"strings"
)

// RouteKind identifies which view a path maps to.
type RouteKind int

const (
	// RouteNone is the zero route: nothing resolved yet.
	RouteNone RouteKind = iota
	RouteHome
	RouteDetail
	RouteNotFound
)

// HomePath is the path of the instance list.
const HomePath = "/"

const instancePrefix = "/instance/"

// Route is the logical page derived from a path.
// It carries no state beyond the instance id.
type Route struct {
	Kind RouteKind
	ID   string
}

// ParseRoute maps a path to a route. Query strings and fragments are ignored.
//
//	/               -> Home
//	/instance/<id>  -> Detail(id)
//	anything else   -> NotFound
func ParseRoute(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == HomePath {
		return Route{Kind: RouteHome}
	}
	rest, ok := strings.CutPrefix(path, instancePrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return Route{Kind: RouteNotFound}
	}
	id, err := url.PathUnescape(rest)
	if err != nil || id == "" {
		return Route{Kind: RouteNotFound}
	}
	return Route{Kind: RouteDetail, ID: id}
}

// InstancePath returns the detail path for an instance id.
func InstancePath(id string) string {
	return instancePrefix + url.PathEscape(id)
}

func (r Route) String() string {
	switch r.Kind {
	case RouteHome:
		return "home"
	case RouteDetail:
		return fmt.Sprintf("detail(%s)", r.ID)
	case RouteNotFound:
		return "not-found"
	}
	return "none"
}
