package netbash

import (
	"log"
	"strings"

	"github.com/klazomenai/netbash/pkg/routes"
)

// Route suffixes appended to the base path
const (
	CommandRoute     = "netbash"
	JQueryRoute      = "netbash-jquery.js"
	IncludesJSRoute  = "netbash-includes.js"
	IncludesCSSRoute = "netbash-includes.css"
)

// Routes lists every route suffix served by the handler
var Routes = []string{CommandRoute, JQueryRoute, IncludesJSRoute, IncludesCSSRoute}

// AssetNames lists the bundle files behind the asset routes
var AssetNames = []string{"jquery.js", "includes.js", "includes.css"}

const routeNamePrefix = "netbash:"

// routeDefaults keep the routes from looking like generic controller/action
// routes to anything that inspects the table.
var routeDefaults = map[string]string{
	"controller": "NetBashHandler",
	"action":     "ProcessRequest",
}

// RegisterRoutes inserts the NetBash routes at the front of table, all bound
// to handler, in a single locked update. Calling it again on the same table
// does nothing.
func RegisterRoutes(table *routes.Table, handler *Handler, basePath string) {
	prefix := RoutePrefix(basePath)

	table.Update(func(tx *routes.Tx) {
		if tx.Has(routeNamePrefix + CommandRoute) {
			log.Printf("NetBash routes already registered, skipping (prefix=%s)", prefix)
			return
		}

		for _, suffix := range Routes {
			tx.Insert(0, &routes.Route{
				Name:            routeNamePrefix + suffix,
				Path:            prefix + suffix,
				CaseInsensitive: true,
				Handler:         handler,
				Defaults:        routeDefaults,
			})
		}
	})

	log.Printf("NetBash routes registered under %s", prefix)
}

// RoutePrefix normalizes a configured base path into an absolute prefix with
// exactly one trailing slash. A leading "~/" marker is dropped and an empty
// path maps to "/".
func RoutePrefix(basePath string) string {
	p := ensureTrailingSlash(strings.TrimPrefix(basePath, "~/"))
	return "/" + strings.TrimLeft(p, "/")
}

func ensureTrailingSlash(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimRight(input, "/") + "/"
}
