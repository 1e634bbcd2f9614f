package custody

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ethergate/ethergate/internal/verification"
)

// Handler exposes the register and login endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the custody HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type authRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type walletResponse struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

// Register creates a wallet account. The response carries the raw
// private key exactly once.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	out, err := h.svc.Register(c.UserContext(), RegisterInput{Phone: req.Phone, Password: req.Password})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{Address: out.Address, PrivateKey: out.PrivateKey})
}

// Login authenticates and returns the wallet address plus the private
// key sealed under the verification code delivered to the phone.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	out, err := h.svc.Login(c.UserContext(), LoginInput{Phone: req.Phone, Password: req.Password})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusOK).JSON(walletResponse{Address: out.Address, PrivateKey: out.SealedKey})
}

// mapServiceError translates service failures into client responses
// without leaking which internal stage failed.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrIdentityTaken):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, verification.ErrDeliveryFailed):
		return fiber.NewError(http.StatusBadGateway, "verification delivery failed")
	default:
		// ErrCorruptCredential and unexpected faults: generic body, the
		// detail stays in the server log.
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
