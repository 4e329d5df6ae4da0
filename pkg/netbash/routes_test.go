package netbash

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klazomenai/netbash/pkg/routes"
)

func TestRoutePrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "/"},
		{input: "/", want: "/"},
		{input: "~/", want: "/"},
		{input: "app", want: "/app/"},
		{input: "/app", want: "/app/"},
		{input: "/app/", want: "/app/"},
		{input: "~/app///", want: "/app/"},
		{input: "~/admin/tools", want: "/admin/tools/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RoutePrefix(tt.input); got != tt.want {
				t.Errorf("RoutePrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func genericTable() *routes.Table {
	table := routes.NewTable()
	table.Add(&routes.Route{
		Name:   "catch-all",
		Path:   "/",
		Prefix: true,
		Handler: routes.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			io.WriteString(w, "generic")
			return nil
		}),
	})
	return table
}

func TestRegisterRoutes(t *testing.T) {
	table := genericTable()
	h := setupTestHandler(t, testBundle)

	RegisterRoutes(table, h, "~/tools")

	all := table.Routes()
	if len(all) != 5 {
		t.Fatalf("Expected 5 routes, got %d", len(all))
	}
	if all[4].Name != "catch-all" {
		t.Errorf("Expected generic route last, got %s", all[4].Name)
	}

	for _, suffix := range Routes {
		t.Run(suffix, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/tools/"+suffix, nil)

			route, ok := table.Lookup(req)
			if !ok {
				t.Fatal("Expected route to match")
			}
			if route.Handler != h {
				t.Error("Expected route bound to the shared handler")
			}
			if route.Defaults["controller"] != "NetBashHandler" || route.Defaults["action"] != "ProcessRequest" {
				t.Errorf("Unexpected defaults %v", route.Defaults)
			}

			w := httptest.NewRecorder()
			table.ServeHTTP(w, req)
			if w.Body.String() == "generic" {
				t.Error("Expected NetBash route to take priority over the generic route")
			}
		})
	}

	w := httptest.NewRecorder()
	table.ServeHTTP(w, httptest.NewRequest("GET", "/tools/other", nil))
	if w.Body.String() != "generic" {
		t.Errorf("Expected unrelated path to reach the generic route, got %q", w.Body.String())
	}
}

func TestRegisterRoutesIgnoresCase(t *testing.T) {
	table := genericTable()
	RegisterRoutes(table, setupTestHandler(t, testBundle), "~/tools")

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{name: "command", path: "/tools/NetBash?Command=echo+hi", contentType: "application/json", body: `{"Success":true,"IsRaw":true,"Content":"hi"}`},
		{name: "stylesheet", path: "/tools/NetBash-Includes.css", contentType: "text/css", body: string(testBundle["includes.css"].Data)},
		{name: "upper case prefix", path: "/TOOLS/NETBASH-includes.js", contentType: "application/javascript", body: string(testBundle["includes.js"].Data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			table.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Expected Content-Type %s, got %q", tt.contentType, ct)
			}
			if w.Body.String() != tt.body {
				t.Errorf("Unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestRegisterRoutesIsIdempotent(t *testing.T) {
	table := genericTable()
	h := setupTestHandler(t, testBundle)

	RegisterRoutes(table, h, "/")
	RegisterRoutes(table, h, "/")
	RegisterRoutes(table, NewHandler(nil, nil), "/other")

	count := 0
	for _, route := range table.Routes() {
		if strings.HasPrefix(route.Name, routeNamePrefix) {
			count++
			if route.Handler != h {
				t.Errorf("Route %s rebound to a different handler", route.Name)
			}
		}
	}
	if count != 4 {
		t.Errorf("Expected 4 NetBash routes, got %d", count)
	}
}

func TestRegisterRoutesServesEndToEnd(t *testing.T) {
	table := genericTable()
	RegisterRoutes(table, setupTestHandler(t, testBundle), "")

	srv := httptest.NewServer(table)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/netbash?Command=echo+hi")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"Success":true,"IsRaw":true,"Content":"hi"}` {
		t.Errorf("Unexpected body %s", body)
	}

	resp, err = http.Get(srv.URL + "/netbash-includes.css")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/css" {
		t.Errorf("Expected text/css, got %q", resp.Header.Get("Content-Type"))
	}
}
