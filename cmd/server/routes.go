package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"finid.backend/internal/interfaces/http/handlers"
	"finid.backend/internal/interfaces/http/middleware"
	"finid.backend/internal/interfaces/web"
	"finid.backend/pkg/metrics"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	profileHandler *handlers.ProfileHandler
	kycHandler     *handlers.KYCHandler
	adminHandler   *handlers.AdminHandler
	apiAuth        gin.HandlerFunc
}

type pageDeps struct {
	pages    *web.Pages
	sessions *middleware.Sessions
	mediaURL string
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	r.GET("/health", h.Health)
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.Signup)
			auth.POST("/token", d.authHandler.Token)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		// Profile and KYC routes (bearer token or session)
		profile := v1.Group("/profile")
		profile.Use(d.apiAuth)
		{
			profile.GET("", d.profileHandler.GetProfile)
			profile.PUT("", d.profileHandler.UpdateProfile)
			profile.PATCH("", d.profileHandler.UpdateProfile)

			profile.GET("/kyc", d.kycHandler.ListDocuments)
			profile.POST("/kyc", d.kycHandler.UploadDocument)
			profile.DELETE("/kyc/:id", d.kycHandler.DeleteDocument)
		}

		// Admin routes (staff only)
		admin := v1.Group("/admin")
		admin.Use(d.apiAuth, middleware.RequireStaff())
		{
			admin.GET("/profiles", d.adminHandler.ListProfiles)
			admin.GET("/documents", d.adminHandler.ListDocuments)
		}
	}
}

func registerPageRoutes(r *gin.Engine, d pageDeps) {
	p := d.pages

	public := r.Group("/", middleware.OptionalSession(d.sessions))
	{
		public.GET(web.HomePath, p.Home)
		public.GET(web.SignupPath, p.SignupForm)
		public.POST(web.SignupPath, p.Signup)
		public.GET(web.LoginPath, p.LoginForm)
		public.POST(web.LoginPath, p.Login)
		public.GET(web.LogoutPath, p.Logout)
		public.POST(web.LogoutPath, p.Logout)
	}

	private := r.Group("/", middleware.PageAuthRequired(d.sessions))
	{
		private.GET(web.ViewProfilePath, p.ViewProfile)
		private.GET(web.EditProfilePath, p.EditProfileForm)
		private.POST(web.EditProfilePath, p.EditProfile)
		private.GET(web.ProfilePagePath, p.EditProfileForm)
		private.POST(web.ProfilePagePath, p.EditProfile)
		private.GET(web.KYCPath, p.KYCForm)
		private.POST(web.KYCPath, p.UploadKYC)
		private.GET(web.DocumentsPath, p.Documents)
		private.POST(web.DocumentsPath, p.DeleteDocument)
		private.GET(mediaRoute(d.mediaURL), p.Media)
	}
}

// mediaRoute turns MEDIA_URL into a catch-all route pattern
func mediaRoute(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		prefix = "/media"
	}
	return prefix + "/*filepath"
}
