package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/activehq/activehq/app/controllers"
	"github.com/activehq/activehq/internal/pkg/middleware"
	"github.com/activehq/activehq/internal/pkg/session"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	session.NewSessionStore()

	app.Get("/health", controllers.HandleHealth)

	api := app.Group("/api", limiter.New())
	api.Use(middleware.StaffContextMiddleware)

	v1 := api.Group("/v1")

	// Public: no staff session required.
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/demo-requests", controllers.HandleCreateDemoRequest)

	// Everything below requires an authenticated staff session; the gym id
	// always comes from that session, never from the request.
	staff := v1.Group("", middleware.RequireStaff)

	staff.Post("/auth/logout", controllers.HandleLogout)
	staff.Get("/auth/me", controllers.HandleMe)

	staff.Get("/gym", controllers.HandleGetGym)
	staff.Put("/gym", middleware.RequireOwner, controllers.HandleUpdateGym)
	staff.Get("/demo-requests", middleware.RequireOwner, controllers.HandleListDemoRequests)

	staff.Post("/members", controllers.HandleCreateMember)
	staff.Get("/members", controllers.HandleListMembers)
	staff.Get("/members/:id", controllers.HandleGetMember)
	staff.Put("/members/:id", controllers.HandleUpdateMember)
	staff.Delete("/members/:id", controllers.HandleDeactivateMember)
	staff.Post("/members/:id/reactivate", controllers.HandleReactivateMember)

	staff.Post("/plans", controllers.HandleCreatePlan)
	staff.Get("/plans", controllers.HandleListPlans)
	staff.Get("/plans/:id", controllers.HandleGetPlan)
	staff.Put("/plans/:id", controllers.HandleUpdatePlan)
	staff.Delete("/plans/:id", controllers.HandleDeactivatePlan)
	staff.Post("/plans/:id/activate", controllers.HandleActivatePlan)

	staff.Post("/memberships", controllers.HandleCreateMembership)
	staff.Get("/memberships", controllers.HandleListMemberships)
	staff.Get("/memberships/:id", controllers.HandleGetMembership)
	staff.Post("/memberships/:id/pause", controllers.HandlePauseMembership)
	staff.Post("/memberships/:id/resume", controllers.HandleResumeMembership)
	staff.Post("/memberships/:id/cancel", controllers.HandleCancelMembership)
	staff.Get("/members/:memberId/memberships", controllers.HandleListMemberMemberships)
	staff.Get("/members/:memberId/memberships/current", controllers.HandleCurrentMembership)
	staff.Post("/members/:memberId/memberships/renew", controllers.HandleRenewMembership)

	staff.Post("/payments", controllers.HandleRecordPayment)
	staff.Get("/payments", controllers.HandleListPayments)
	// Registered before /payments/:id so the literal segment wins.
	staff.Get("/payments/daily-collection", controllers.HandleDailyCollection)
	staff.Get("/payments/:id", controllers.HandleGetPayment)
	staff.Get("/members/:memberId/payments", controllers.HandleListMemberPayments)

	staff.Post("/attendance/check-in", controllers.HandleCheckIn)
	staff.Post("/attendance/check-out", controllers.HandleCheckOut)
	staff.Get("/attendance", controllers.HandleListAttendance)
	staff.Get("/members/:memberId/attendance", controllers.HandleListMemberAttendance)

	staff.Get("/reports/dashboard", controllers.HandleDashboard)
	staff.Get("/reports/memberships", controllers.HandleMembershipStats)
	staff.Get("/reports/collection", controllers.HandleCollectionReport)
	staff.Get("/reports/expiring", controllers.HandleExpiringMembers)
	staff.Get("/reports/dues", controllers.HandleMembersWithDues)
}
