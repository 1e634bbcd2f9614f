package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ethergate/ethergate/internal/custody"
)

// RegisterAuthRoutes wires registration and login endpoints. Login sits
// behind the rate limiter; registration is guarded by the store's
// uniqueness constraint and needs no limiter of its own.
func RegisterAuthRoutes(r fiber.Router, h *custody.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
