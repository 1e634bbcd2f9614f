package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ethergate/ethergate/internal/chain"
	"github.com/ethergate/ethergate/internal/config"
	"github.com/ethergate/ethergate/internal/credential"
	"github.com/ethergate/ethergate/internal/custody"
	"github.com/ethergate/ethergate/internal/fiat"
	"github.com/ethergate/ethergate/internal/middleware"
	"github.com/ethergate/ethergate/internal/verification"
	"github.com/ethergate/ethergate/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Development may run without Postgres/Redis (memory store, logged
	// codes); anywhere else the fallbacks would silently drop durability.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var creds credential.Repository
	if d.DB != nil {
		creds = credential.NewPostgresRepository(d.DB)
	} else {
		creds = credential.NewMemoryRepository()
	}

	var sender verification.Sender
	if d.Cfg.TelegramAPIKey != "" {
		sender = verification.NewTelegramSender(d.Cfg.TelegramAPIKey)
	} else {
		sender = verification.NewLogSender(d.Logger)
	}
	exchange := verification.NewExchange(sender)

	provider, err := chain.NewNodeProvider(chain.InfuraURL(d.Cfg.InfuraNetwork, d.Cfg.InfuraProjectID))
	if err != nil {
		return err
	}
	history := chain.NewEtherscanClient(d.Cfg.EtherscanAPIKey, d.Cfg.InfuraNetwork)
	converter := fiat.NewCoinGeckoConverter()

	custodySvc := custody.NewService(creds, provider, exchange, d.Logger)
	custodyHandler := custody.NewHandler(custodySvc)

	walletSvc := wallet.NewService(provider, history, converter, d.Cfg.DefaultFiatCurrency)
	walletHandler := wallet.NewHandler(walletSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, custodyHandler, middleware.AuthRateLimit(d.Cache, 5))

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterWalletRoutes(api, walletHandler, idem)

	return nil
}
