package routes

import (
	"FoodShare-Backend/domain"
	"FoodShare-Backend/internal/api/handlers"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	DonationHandler handlers.DonationHandler
	AdminHandler    handlers.AdminHandler
	RealtimeHandler handlers.RealtimeHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.MetricsMiddleware())
	c.GuestRoute()
	c.User()
	c.Donations()
	c.Admin()
	c.Realtime()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(ctx *fiber.Ctx) error {
		return presenters.SuccessResponse(ctx, fiber.Map{"message": "pong"}, fiber.StatusOK, domain.MessageSuccessPing)
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	// user routes
	{
		user.Get("/me", c.UserHandler.Me)
		user.Put("/location", c.UserHandler.UpdateLocation)
		user.Put("/preferences", c.UserHandler.UpdatePreferences)
		user.Get("/donations", c.Middleware.RequireRole(domain.RoleDonor), c.UserHandler.MyDonations)
		user.Get("/claimed-donations", c.Middleware.RequireRole(domain.RoleRecipient), c.UserHandler.ClaimedDonations)
		user.Get("/nearby-recipients", c.Middleware.RequireRole(domain.RoleDonor, domain.RoleAdmin), c.UserHandler.NearbyRecipients)
	}
}

func (c *Config) Donations() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	donor := c.Middleware.RequireRole(domain.RoleDonor)
	recipient := c.Middleware.RequireRole(domain.RoleRecipient)

	donations := c.App.Group("/api/v1/donations")
	donations.Get("", c.DonationHandler.ListDonations)
	donations.Get("/:id", c.DonationHandler.GetDonation)
	donations.Get("/:id/history", c.DonationHandler.GetDonationHistory)

	donations.Post("", auth, donor, c.DonationHandler.CreateDonation)
	donations.Put("/:id", auth, donor, c.DonationHandler.UpdateDonation)
	donations.Delete("/:id", auth, donor, c.DonationHandler.DeleteDonation)

	donations.Post("/:id/claim", auth, recipient, c.DonationHandler.ClaimDonation)
	donations.Post("/:id/pickup", auth, recipient, c.DonationHandler.PickupDonation)
	donations.Post("/:id/complete", auth, recipient, c.DonationHandler.CompleteDonation)
	donations.Post("/:id/cancel", auth, c.Middleware.RequireRole(domain.RoleDonor, domain.RoleAdmin), c.DonationHandler.CancelDonation)
}

func (c *Config) Admin() {
	admin := c.App.Group("/api/v1/admin",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.RequireRole(domain.RoleAdmin),
	)
	admin.Get("/users", c.AdminHandler.ListUsers)
	admin.Patch("/users/:id/status", c.AdminHandler.UpdateUserStatus)
	admin.Get("/donations", c.AdminHandler.ListDonations)
	admin.Delete("/donations/:id", c.AdminHandler.DeleteDonation)
	admin.Post("/donations/:id/cancel", c.AdminHandler.CancelDonation)
	admin.Post("/reminders/pickup", c.AdminHandler.SendPickupReminders)
	admin.Post("/sweep", c.AdminHandler.RunSweep)
}

func (c *Config) Realtime() {
	c.App.Get("/ws/donations",
		c.Middleware.OptionalAuthMiddleware(c.JWTService),
		c.RealtimeHandler.Upgrade,
		c.RealtimeHandler.DonationFeed(),
	)
}
