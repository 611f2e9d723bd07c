package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"minimart/internal/auth"
	"minimart/internal/handler"
	"minimart/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	ledger auth.TokenLedgerInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	purchaseHandler *handler.PurchaseHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/authenticate", authHandler.Authenticate)
	api.POST("/auth/refresh-token", authHandler.Refresh)

	// Secured routes: signature check plus ledger check, so revoked tokens
	// are rejected even while their signature is still valid.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: parseAndCheckToken(jwtService, ledger),
	}), identity())

	secured.GET("/users/me", userHandler.Me)
	secured.PATCH("/users/password", userHandler.ChangePassword)

	// Purchases
	secured.POST("/purchases", purchaseHandler.CreatePurchase)
	secured.GET("/purchases/client/:id", purchaseHandler.ListClientPurchases)

	// Staff-only routes
	staff := secured.Group("", requireRole(model.RoleAdmin, model.RoleManager))

	staff.GET("/management/users", userHandler.ListUsers)
	staff.GET("/management/users/:id", userHandler.GetUser)
	staff.DELETE("/management/users/:id", userHandler.DeleteUser)
	staff.PUT("/users/:id/max-amount", userHandler.UpdateMaxAmount)
	staff.GET("/users/:id/max-amount", userHandler.GetMaxAmount)
	staff.GET("/purchases/admin", purchaseHandler.ListAdminPurchases)

	staff.POST("/products", productHandler.CreateProduct)
	staff.PUT("/products/:id", productHandler.UpdateProduct)
	staff.DELETE("/products/:id", productHandler.DeleteProduct)

	secured.GET("/products", productHandler.ListProducts)
	secured.GET("/products/:name", productHandler.GetProduct)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
