package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/middleware"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Realtime is optional; without it
// the /ws route is not registered.
type Deps struct {
	Logger      *zap.Logger
	Issuer      *auth.Issuer
	Denylist    auth.Denylist
	AuthLimiter *middleware.RateLimiter
	CORSOrigins []string
	DB          Pinger

	// TrustedProxies may set X-Forwarded-For. Nil trusts none, which keeps
	// the auth rate limiter keyed on the socket peer.
	TrustedProxies []string

	Auth     *AuthHandler
	Projects *ProjectHandler
	Tasks    *TaskHandler
	Tenants  *TenantHandler
	Members  *MemberHandler
	Users    *UserHandler
	Realtime *RealtimeHandler
}

// NewRouter wires middleware and routes. Everything under /api except
// health, register and login requires a bearer token.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Logger.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestID(d.Logger),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(d.CORSOrigins),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(d.Issuer, d.Denylist)
	if d.Realtime != nil {
		r.GET("/ws", middleware.AuthMiddleware(d.Issuer, d.Denylist, middleware.AllowQueryToken()), d.Realtime.Stream)
	}

	api := r.Group("/api")
	api.GET("/health", Health(d.DB))

	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("")
		if d.AuthLimiter != nil {
			limited.Use(d.AuthLimiter.Middleware())
		}
		limited.POST("/register-tenant", d.Auth.RegisterTenant)
		limited.POST("/login", d.Auth.Login)

		authGroup.GET("/me", requireAuth, d.Auth.Me)
		authGroup.POST("/logout", requireAuth, d.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(requireAuth)

	tenantAdmin := middleware.RequireRole(models.RoleTenantAdmin)
	projectAdmin := middleware.RequireRole(models.RoleTenantAdmin, models.RoleSuperAdmin)
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	projects := protected.Group("/projects")
	{
		projects.GET("", d.Projects.List)
		projects.POST("", tenantAdmin, d.Projects.Create)
		projects.GET("/:id", d.Projects.Get)
		projects.PUT("/:id", projectAdmin, d.Projects.Update)
		projects.DELETE("/:id", projectAdmin, d.Projects.Delete)

		projects.POST("/:id/tasks", d.Tasks.Create)
		projects.GET("/:id/tasks", d.Tasks.List)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("/:taskId", d.Tasks.Get)
		tasks.PATCH("/:taskId/status", d.Tasks.UpdateStatus)
		tasks.PUT("/:taskId", d.Tasks.Update)
		tasks.DELETE("/:taskId", d.Tasks.Delete)
	}

	tenants := protected.Group("/tenants")
	{
		tenants.GET("", superAdmin, d.Tenants.List)
		tenants.GET("/:id", d.Tenants.Get)
		tenants.PUT("/:id", d.Tenants.Update)

		tenants.POST("/:id/users", tenantAdmin, d.Members.Add)
		tenants.GET("/:id/users", d.Members.List)
	}

	users := protected.Group("/users")
	{
		users.PUT("/:id", d.Users.Update)
		users.DELETE("/:id", tenantAdmin, d.Users.Delete)
	}

	return r
}
