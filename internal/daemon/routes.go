package daemon

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"github.com/minecart-tools/regionsync/internal/daemon/handlers"
	"github.com/minecart-tools/regionsync/internal/daemon/middleware"
	"github.com/minecart-tools/regionsync/internal/hub"
	"github.com/minecart-tools/regionsync/internal/locator"
	"github.com/minecart-tools/regionsync/internal/supervisor"
	"github.com/minecart-tools/regionsync/internal/tracker"
	"github.com/minecart-tools/regionsync/internal/updater"
)

// RouteConfig carries everything the control plane handlers touch.
type RouteConfig struct {
	Auth    middleware.TokenAuthConfig
	Config  handlers.ConfigProvider
	Tracker *tracker.Tracker
	Engine  *updater.Engine
	Journal *updater.Journal
	Locator locator.Locator
	Service *supervisor.Supervisor
	Hub     *hub.Hub
	Reload  func() error
}

func SetupRoutes(rc *RouteConfig) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	rateLimitStore := memory.NewStore()
	rateLimiter := limiter.New(rateLimitStore, limiter.Rate{
		Period: 1 * time.Second,
		Limit:  10,
	})

	regionsH := handlers.NewRegionsHandler(rc.Config, rc.Tracker, rc.Locator)
	updateH := handlers.NewUpdateHandler(rc.Engine)
	historyH := handlers.NewHistoryHandler(rc.Engine, rc.Journal)
	statusH := handlers.NewStatusHandler(rc.Config, rc.Tracker, rc.Service, rc.Engine)
	configH := handlers.NewConfigHandler(rc.Reload)

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", handlers.Index)

	v1 := r.Group("/v1")
	v1.Use(middleware.TokenAuth(rc.Auth))
	{
		v1.GET("/status", statusH.Status)

		v1Regions := v1.Group("/regions")
		{
			v1Regions.GET("/pending", regionsH.ListPending)
			v1Regions.POST("/pending", regionsH.AddPending)
			v1Regions.DELETE("/pending", regionsH.RemovePending)
			v1Regions.DELETE("/pending/all", regionsH.ClearPending)

			v1Regions.GET("/protected", regionsH.ListProtected)
			v1Regions.POST("/protected", regionsH.Protect)
			v1Regions.DELETE("/protected", regionsH.Deprotect)
			v1Regions.DELETE("/protected/all", regionsH.DeprotectAll)

			v1Regions.GET("/scan", regionsH.Scan)
		}

		v1.GET("/history", historyH.List)
		v1.POST("/update", updateH.Trigger)
		v1.POST("/config/reload", configH.Reload)
		v1.GET("/events", rc.Hub.Accept)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
