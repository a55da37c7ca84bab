// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/pkg/api/v1/handlers"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first
2. For similar scopes, put the endpoints in alphabetical order
3. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
4. For clarity, naming should match the action (i.e. GetJob, ListJobs)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "5000"
	// APIv1Prefix is the prefix for versioned API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Process
	Process = "Process"

	// Job routes
	ListJobs = "ListJobs"
	GetJob   = "GetJob"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// APIContext marks every request as served in the API app context
func APIContext(c *fiber.Ctx) error {
	c.SetUserContext(appctx.With(c.UserContext(), appctx.API))
	return c.Next()
}

// RegisterRoutes configures all the routes
func RegisterRoutes(
	app *fiber.App,
	processHandler *handlers.ProcessHandler,
	healthHandler *handlers.HealthHandler,
	jobHandler *handlers.JobHandler,
) {
	app.Use(APIContext)

	// Health check
	app.Get("/health", healthHandler.Check).Name(HealthCheck)

	// Process
	app.Post("/process", processHandler.Process).Name(Process)

	// ---------------------------
	// Job endpoints
	v1 := app.Group(APIv1Prefix)
	jobs := v1.Group("/jobs")
	jobs.Get("/", jobHandler.ListJobs).Name(ListJobs)
	jobs.Get("/:id", jobHandler.GetJob).Name(GetJob)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		cache := make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app, &handlers.ProcessHandler{}, &handlers.HealthHandler{}, &handlers.JobHandler{})

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				cache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = cache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	// Replace parameters in the route
	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if len(route) > 1 && strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	// Add query parameters if any
	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Process route helper

// ProcessURL returns the URL for the process endpoint
func ProcessURL() string {
	return BuildURL(Process, nil, nil)
}

// Job route helpers

// ListJobsURL returns the URL for listing jobs
func ListJobsURL(queryParams url.Values) string {
	return BuildURL(ListJobs, nil, queryParams)
}

// GetJobURL returns the URL for getting a job by ID
func GetJobURL(id string) string {
	return BuildURL(GetJob, map[string]string{"id": id}, nil)
}
