package router

import (
	"net/http"

	"confrarias/internal/handler"
	"confrarias/internal/middleware"
	"confrarias/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	User       *handler.UserHandler
	Email      *handler.EmailHandler
	Profile    *handler.ProfileHandler
	Discovery  *handler.DiscoveryHandler
	Moderation *handler.ModerationHandler
	Submission *handler.SubmissionHandler
	Event      *handler.EventHandler
	Post       *handler.PostHandler
	Upload     *handler.UploadHandler
}

type Deps struct {
	Handlers Handlers
	Auth     *middleware.Authenticator
	Limiter  *middleware.RateLimiter
	Log      *zap.Logger
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.AccessLog(d.Log))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Recurso não encontrado."})
	})

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := d.Handlers
	limited := d.Limiter.Middleware()
	api := r.Group("/api")

	// e-mail codes
	api.POST("/email/:scope/code", limited, h.Email.SendCode)

	// accounts
	userGroup := api.Group("/user", limited)
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
		userGroup.POST("/reset", h.User.ResetPassword)
	}
	api.POST("/token/refresh", h.User.TokenRefresh)

	// public read side; a token, when sent, lets authors see their own pending items
	public := api.Group("", d.Auth.Optional())
	{
		public.POST("/submissions", limited, h.Submission.Submit)
		public.GET("/confrarias", h.Profile.ListConfrarias)
		public.GET("/confrarias/:id", h.Profile.Get)
		public.GET("/confrarias/:id/events", h.Event.ListByConfraria)
		public.GET("/confrarias/:id/posts", h.Post.ListByConfraria)
		public.GET("/events", h.Event.Upcoming)
		public.GET("/posts/:id", h.Post.Get)
		public.GET("/discoveries", h.Discovery.List)
		public.GET("/discoveries/:id", h.Discovery.Get)
	}

	authed := api.Group("", d.Auth.Required(), limited)
	{
		authed.POST("/auth/logout", h.User.Logout)
		authed.POST("/auth/change-password", h.User.ChangePassword)

		authed.PUT("/profile/:id", h.Profile.Update)
		authed.POST("/profile/:id/gallery", h.Profile.AddGalleryImage)
		authed.DELETE("/profile/:id/gallery/:imageId", h.Profile.RemoveGalleryImage)
		authed.POST("/profile/:id/banner", h.Profile.SetBanner)
		authed.POST("/profile/:id/logo", h.Profile.SetLogo)

		authed.POST("/uploads", h.Upload.Upload)

		authed.POST("/discoveries", h.Discovery.Submit)
		authed.POST("/discoveries/:id/seal", h.Discovery.ToggleSeal)

		authed.POST("/events", h.Event.Create)
		authed.PUT("/events/:id", h.Event.Update)
		authed.DELETE("/events/:id", h.Event.Delete)

		authed.POST("/posts", h.Post.Create)
		authed.PUT("/posts/:id", h.Post.Update)
		authed.DELETE("/posts/:id", h.Post.Delete)
		authed.POST("/posts/suggest-tags", h.Post.SuggestTags)
	}

	// admin checks happen in the services; the group only requires a session
	admin := api.Group("/admin", d.Auth.Required())
	{
		admin.GET("/users", h.Profile.ListUsers)
		admin.PUT("/users/:id/status", h.Profile.SetUserStatus)

		admin.GET("/discoveries", h.Discovery.AdminList)
		admin.PUT("/discoveries/:id/status", h.Moderation.SetStatus(model.TargetDiscovery))

		admin.GET("/submissions", h.Submission.List)
		admin.GET("/submissions/:id", h.Submission.Get)
		admin.PUT("/submissions/:id/status", h.Moderation.SetStatus(model.TargetSubmission))

		admin.GET("/moderation-actions", h.Moderation.ListActions)
	}

	return r
}
