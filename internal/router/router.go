package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/auth"
	"github.com/munhub-dev/munhub/internal/handlers"
	"github.com/munhub-dev/munhub/internal/middleware"
	"github.com/munhub-dev/munhub/internal/types"
	"gorm.io/gorm"
)

// Deps carries every constructed dependency the routes need. Nothing here
// is a package-level singleton.
type Deps struct {
	DB            *gorm.DB
	Tokens        *auth.TokenManager
	UploadsDir    string
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Registrations *handlers.RegistrationHandler
	Committees    *handlers.CommitteeHandler
	Pricing       *handlers.PricingHandler
	Payments      *handlers.PaymentHandler
	CheckIns      *handlers.CheckInHandler
	Accommodation *handlers.AccommodationHandler
	Events        *handlers.EventHandler
	Attendance    *handlers.AttendanceHandler
	Marks         *handlers.MarkHandler
	Contact       *handlers.ContactHandler
	Notifications *handlers.NotificationHandler
	Popups        *handlers.PopupHandler
	Resources     *handlers.ResourceHandler
	ActivityLogs  *handlers.ActivityLogHandler
	Dashboard     *handlers.DashboardHandler
	CheckInFeed   *handlers.CheckInFeed
}

// Role sets for the route table. Each route names its exact allow-list;
// there is no role inheritance anywhere else in the codebase.
var (
	anyAdmin = []types.Role{
		types.RoleSuperAdmin, types.RoleSoftwareAdmin, types.RoleRegistrationAdmin,
		types.RoleDelegateAffairs, types.RoleHospitalityAdmin, types.RoleCheckinAdmin,
	}
	superOnly        = []types.Role{types.RoleSuperAdmin}
	platformAdmins   = []types.Role{types.RoleSuperAdmin, types.RoleSoftwareAdmin}
	registrationTeam = []types.Role{types.RoleSuperAdmin, types.RoleRegistrationAdmin}
	affairsTeam      = []types.Role{types.RoleSuperAdmin, types.RoleDelegateAffairs}
	hospitalityTeam  = []types.Role{types.RoleSuperAdmin, types.RoleHospitalityAdmin}
	checkinTeam      = []types.Role{types.RoleSuperAdmin, types.RoleCheckinAdmin, types.RoleHospitalityAdmin}
	delegatesOnly    = []types.Role{types.RoleDelegate}
)

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Uploaded files are served read-only under a fixed prefix.
	r.StaticFS("/uploads", http.Dir(deps.UploadsDir))

	authed := middleware.RequireAuth(deps.Tokens, deps.DB)
	roles := func(allowed ...types.Role) []gin.HandlerFunc {
		return []gin.HandlerFunc{authed, middleware.RequireRoles(allowed...)}
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", deps.Auth.Register)
			authGroup.POST("/login", deps.Auth.Login)
			authGroup.GET("/me", authed, deps.Auth.Me)
			authGroup.POST("/change-password", authed, deps.Auth.ChangePassword)
		}

		users := api.Group("/users")
		{
			users.GET("", append(roles(platformAdmins...), deps.Users.List)...)
			users.GET("/:id", append(roles(anyAdmin...), deps.Users.Get)...)
			users.PATCH("/:id/role", append(roles(superOnly...), deps.Users.UpdateRole)...)
			users.POST("/:id/deactivate", append(roles(platformAdmins...), deps.Users.Deactivate)...)
			users.POST("/:id/reactivate", append(roles(platformAdmins...), deps.Users.Reactivate)...)
		}

		registrations := api.Group("/registrations")
		{
			registrations.POST("", append(roles(delegatesOnly...), deps.Registrations.Create)...)
			registrations.GET("/me", append(roles(delegatesOnly...), deps.Registrations.Mine)...)
			registrations.GET("", append(roles(registrationTeam...), deps.Registrations.List)...)
			registrations.GET("/stats", append(roles(anyAdmin...), deps.Registrations.Stats)...)
			registrations.GET("/:id", append(roles(registrationTeam...), deps.Registrations.Get)...)
			registrations.PATCH("/:id/status", append(roles(registrationTeam...), deps.Registrations.UpdateStatus)...)
			registrations.PATCH("/:id/allocation", append(roles(affairsTeam...), deps.Registrations.Allocate)...)
			registrations.DELETE("/:id", append(roles(superOnly...), deps.Registrations.Delete)...)
		}

		committees := api.Group("/committees")
		{
			committees.GET("", deps.Committees.ListPublic)
			committees.GET("/:id", deps.Committees.Get)
			committees.POST("", append(roles(affairsTeam...), deps.Committees.Create)...)
			committees.PUT("/:id", append(roles(affairsTeam...), deps.Committees.Update)...)
			committees.DELETE("/:id", append(roles(superOnly...), deps.Committees.Delete)...)
			committees.POST("/:id/portfolios", append(roles(affairsTeam...), deps.Committees.AddPortfolio)...)
			committees.DELETE("/:id/portfolios/:portfolio_id", append(roles(affairsTeam...), deps.Committees.DeletePortfolio)...)
		}

		pricing := api.Group("/pricing")
		{
			pricing.GET("", deps.Pricing.Current)
			pricing.GET("/history", append(roles(platformAdmins...), deps.Pricing.History)...)
			pricing.POST("", append(roles(platformAdmins...), deps.Pricing.Create)...)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/status", deps.Payments.Status)
			payments.POST("/order", append(roles(delegatesOnly...), deps.Payments.CreateOrder)...)
			payments.POST("/confirm", authed, deps.Payments.Confirm)
			payments.GET("/me", append(roles(delegatesOnly...), deps.Payments.Mine)...)
			payments.GET("", append(roles(platformAdmins...), deps.Payments.List)...)
			payments.POST("/:id/refund", append(roles(superOnly...), deps.Payments.Refund)...)
		}

		checkin := api.Group("/checkin")
		{
			checkin.POST("", append(roles(checkinTeam...), deps.CheckIns.Mark)...)
			checkin.GET("/user/:user_id", append(roles(checkinTeam...), deps.CheckIns.ForUser)...)
			checkin.GET("/today", append(roles(checkinTeam...), deps.CheckIns.Today)...)
			checkin.GET("/feed", append(roles(checkinTeam...), deps.CheckInFeed.Serve)...)
		}

		accommodation := api.Group("/accommodation")
		{
			accommodation.GET("", append(roles(hospitalityTeam...), deps.Accommodation.List)...)
			accommodation.PATCH("/:id", append(roles(hospitalityTeam...), deps.Accommodation.Approve)...)
		}

		events := api.Group("/events")
		{
			events.GET("", deps.Events.ListPublic)
			events.POST("", append(roles(platformAdmins...), deps.Events.Create)...)
			events.PUT("/:id", append(roles(platformAdmins...), deps.Events.Update)...)
			events.DELETE("/:id", append(roles(platformAdmins...), deps.Events.Delete)...)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("", append(roles(affairsTeam...), deps.Attendance.Mark)...)
			attendance.GET("/committee/:committee_id", append(roles(affairsTeam...), deps.Attendance.ForCommittee)...)
		}

		marks := api.Group("/marks")
		{
			marks.POST("", append(roles(affairsTeam...), deps.Marks.Upsert)...)
			marks.GET("/committee/:committee_id", append(roles(affairsTeam...), deps.Marks.ForCommittee)...)
			marks.GET("/me", append(roles(delegatesOnly...), deps.Marks.Mine)...)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", deps.Contact.Submit)
			contact.GET("", append(roles(platformAdmins...), deps.Contact.List)...)
			contact.PATCH("/:id", append(roles(platformAdmins...), deps.Contact.UpdateStatus)...)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("/templates", append(roles(platformAdmins...), deps.Notifications.ListTemplates)...)
			notifications.POST("/templates", append(roles(platformAdmins...), deps.Notifications.CreateTemplate)...)
			notifications.PUT("/templates/:id", append(roles(platformAdmins...), deps.Notifications.UpdateTemplate)...)
			notifications.POST("/send", append(roles(platformAdmins...), deps.Notifications.Send)...)
			notifications.POST("/send-bulk", append(roles(platformAdmins...), deps.Notifications.SendBulk)...)
		}

		popups := api.Group("/popups")
		{
			popups.GET("/active", deps.Popups.Active)
			popups.GET("", append(roles(platformAdmins...), deps.Popups.List)...)
			popups.POST("", append(roles(platformAdmins...), deps.Popups.Create)...)
			popups.PUT("/:id", append(roles(platformAdmins...), deps.Popups.Update)...)
			popups.DELETE("/:id", append(roles(platformAdmins...), deps.Popups.Delete)...)
		}

		resources := api.Group("/resources")
		{
			resources.GET("", deps.Resources.ListPublic)
			resources.POST("", append(roles(platformAdmins...), deps.Resources.Upload)...)
			resources.PATCH("/:id/visibility", append(roles(platformAdmins...), deps.Resources.SetVisibility)...)
			resources.DELETE("/:id", append(roles(platformAdmins...), deps.Resources.Delete)...)
		}

		api.GET("/activity-logs", append(roles(platformAdmins...), deps.ActivityLogs.List)...)
		api.GET("/dashboard", append(roles(anyAdmin...), deps.Dashboard.Summary)...)
	}

	return r
}
