package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ethergate/ethergate/internal/wallet"
)

// RegisterWalletRoutes wires balance, transaction and conversion
// endpoints. The transaction endpoint is idempotency-protected when a
// cache is available: replaying a broadcast is not recoverable.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idempotency fiber.Handler) {
	group := r.Group("/wallet")
	group.Get("/balance/:address", h.Balance)
	if idempotency != nil {
		group.Post("/transaction", idempotency, h.Send)
	} else {
		group.Post("/transaction", h.Send)
	}
	group.Get("/transactions/:address", h.History)
	group.Get("/transaction/:txHash", h.Details)
	group.Get("/convert/:ethAmount", h.Convert)
	group.Post("/create", h.Create)
}
