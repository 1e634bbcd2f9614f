package wallet

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ethergate/ethergate/internal/chain"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create generates a fresh keypair and returns it without persisting
// anything server-side.
func (h *Handler) Create(c *fiber.Ctx) error {
	w, err := h.svc.CreateWallet()
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "failed to create wallet")
	}
	return c.Status(http.StatusOK).JSON(w)
}

// Balance returns the balance for an address, priced in the currency
// from the query string (falling back to the configured default).
func (h *Handler) Balance(c *fiber.Ctx) error {
	address := c.Params("address")
	if !chain.ValidAddress(address) {
		return fiber.NewError(http.StatusBadRequest, "invalid ethereum address")
	}

	out, err := h.svc.Balance(c.UserContext(), address, c.Query("currency"))
	if err != nil {
		return mapChainError(err)
	}
	return c.Status(http.StatusOK).JSON(out)
}

type sendRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Value      string `json:"value"`
	Data       string `json:"data"`
	GasLimit   uint64 `json:"gasLimit"`
	PrivateKey string `json:"privateKey"`
}

// Send signs and broadcasts a transfer.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	hash, err := h.svc.Send(c.UserContext(), SendInput{
		From:       req.From,
		To:         req.To,
		Value:      req.Value,
		Data:       req.Data,
		GasLimit:   req.GasLimit,
		PrivateKey: req.PrivateKey,
	})
	if err != nil {
		return mapChainError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"txHash": hash})
}

// History lists recent transactions for an address.
func (h *Handler) History(c *fiber.Ctx) error {
	address := c.Params("address")
	if !chain.ValidAddress(address) {
		return fiber.NewError(http.StatusBadRequest, "invalid ethereum address")
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	txs, err := h.svc.History(c.UserContext(), address, limit)
	if err != nil {
		return mapChainError(err)
	}
	return c.Status(http.StatusOK).JSON(txs)
}

// Details resolves one transaction by hash.
func (h *Handler) Details(c *fiber.Ctx) error {
	tx, err := h.svc.Details(c.UserContext(), c.Params("txHash"))
	if err != nil {
		return mapChainError(err)
	}
	return c.Status(http.StatusOK).JSON(tx)
}

// Convert prices an ether amount in fiat.
func (h *Handler) Convert(c *fiber.Ctx) error {
	ethAmount := c.Params("ethAmount")
	if _, err := strconv.ParseFloat(ethAmount, 64); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid ETH amount")
	}

	value, err := h.svc.Convert(c.UserContext(), ethAmount, c.Query("currency"))
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "failed to get conversion rate")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"eth":          ethAmount,
		"currency":     value.Currency,
		"value":        value.Value,
		"exchangeRate": value.ExchangeRate,
		"timestamp":    time.Now().UnixMilli(),
	})
}

func mapChainError(err error) error {
	switch {
	case errors.Is(err, chain.ErrInvalidAddress),
		errors.Is(err, chain.ErrKeyMismatch),
		errors.Is(err, ErrMissingFields):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, chain.ErrTxNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusBadGateway, "chain provider error")
	}
}
