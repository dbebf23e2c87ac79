// console/internal/api/routes/routes.go
package routes

import (
	"net/http"
	"slices"

	"enquiry-admin-console/config"
	"enquiry-admin-console/internal/api/handlers"
	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/auth"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Backend is what the routes call directly; the rest goes through the
// console registry.
type Backend interface {
	handlers.Authenticator
	handlers.EnquiryLister
}

// SetupRouter wires the console API. files may be nil when no bucket is
// configured.
func SetupRouter(
	cfg config.Config,
	logger *zap.Logger,
	backend Backend,
	registry *console.Registry,
	gate *auth.Gate,
	tokens *auth.TokenStore,
	wsHub *socket.Hub,
	files handlers.FileStore,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery())
	router.Use(cors.New(CORSConfig(cfg.CORS)))

	authHandler := &handlers.AuthHandler{Backend: backend, Tokens: tokens, Registry: registry, Logger: logger, SecureCookie: cfg.Server.Mode == gin.ReleaseMode}
	enquiryHandler := &handlers.EnquiryHandler{Backend: backend, Registry: registry, Logger: logger}
	assignmentHandler := &handlers.AssignmentHandler{Registry: registry}
	rfqHandler := &handlers.RFQHandler{Registry: registry}
	quoteHandler := &handlers.QuoteHandler{Registry: registry, Files: files, Logger: logger}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Logger: logger, CheckOrigin: originChecker(cfg.CORS)}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/console")
	{
		api.POST("/login", authHandler.Login)

		protected := api.Group("/")
		protected.Use(middleware.AdminGate(gate, tokens, logger))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.Me)
			protected.GET("/navigation", handlers.Navigation)
			protected.GET("/ws", webSocketHandler.ServeWs)

			protected.GET("/enquiries", enquiryHandler.List)

			enquiry := protected.Group("/enquiries/:id")
			{
				enquiry.GET("", enquiryHandler.Get)
				enquiry.POST("/products/select-all", enquiryHandler.ToggleAll)
				enquiry.POST("/products/:productId/select", enquiryHandler.ToggleProduct)

				vendors := enquiry.Group("/products/:productId/vendors")
				{
					vendors.POST("/open", assignmentHandler.Open)
					vendors.POST("/close", assignmentHandler.Close)
					vendors.POST("/toggle", assignmentHandler.Toggle)
					vendors.POST("/commit", assignmentHandler.Commit)
					vendors.DELETE("/:vendorId", assignmentHandler.Remove)
				}

				enquiry.GET("/rfq", rfqHandler.Review)
				enquiry.POST("/rfq", rfqHandler.Send)

				quotes := enquiry.Group("/quotes")
				{
					quotes.GET("", quoteHandler.List)
					quotes.GET("/export", quoteHandler.Export)
					quotes.POST("/forward", quoteHandler.Forward)
					quotes.POST("/groups/:productId/toggle", quoteHandler.ToggleGroup)
					quotes.POST("/:quoteId/select", quoteHandler.ToggleQuote)
				}
			}
		}
	}

	return router
}

// CORSConfig allows the dashboard origins to call the console with
// credentials. A "*" origin, or none, allows any origin without credentials.
func CORSConfig(cfg config.CORSConfig) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept", "Authorization",
		middleware.SessionHeader, "X-Request-ID",
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	return corsConfig
}

func originChecker(cfg config.CORSConfig) func(r *http.Request) bool {
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.AllowOrigins, origin)
	}
}
