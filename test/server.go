package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/params"
	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/pkg/api/v1/client"
	"github.com/celestiaorg/faceswap/pkg/api/v1/handlers"
	"github.com/celestiaorg/faceswap/pkg/api/v1/routes"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// SetupServer configures the test suite with a real API server
func SetupServer(suite *Suite) {
	suite.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	suite.App.Use(logger.APILogger())

	// Create services
	processService := services.NewProcessService(
		suite.Staging, suite.Jobs, suite.Pipeline, params.Defaults(params.DefaultCapabilities()),
	)

	// Register routes
	routes.RegisterRoutes(suite.App,
		handlers.NewProcessHandler(processService),
		handlers.NewHealthHandler(suite.Staging, suite.Stats),
		handlers.NewJobHandler(suite.Jobs),
	)

	// Create test server using adaptor to convert Fiber app to http.Handler
	suite.Server = httptest.NewServer(adaptor.FiberApp(suite.App))

	// Create API client with test configuration
	apiClient, err := client.NewClient(&client.Options{
		BaseURL: suite.Server.URL,
		Timeout: testClientTimeout,
	})
	suite.Require().NoError(err, "Failed to create API client")
	suite.APIClient = apiClient
}
