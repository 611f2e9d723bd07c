package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/service"
)

// PurchaseHandler handles purchase endpoints.
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// PurchaseRequest represents a purchase request. UserID is honored only for
// admin callers; clients always buy for themselves.
type PurchaseRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	UserID      uint   `json:"user_id"`
}

// PurchaseResponse represents a completed purchase.
type PurchaseResponse struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Amount      string `json:"amount"`
	UserID      uint   `json:"user_id"`
}

// CreatePurchase godoc
// @Summary Purchase a product
// @Tags purchases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PurchaseRequest true "Purchase data"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /purchases [post]
func (h *PurchaseHandler) CreatePurchase(c echo.Context) error {
	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	callerID, ok := c.Get("user_id").(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	// Clients purchase for themselves; admins may purchase on behalf of a user.
	buyerID := callerID
	if role, _ := c.Get("role").(string); role == string(model.RoleAdmin) && req.UserID != 0 {
		buyerID = req.UserID
	}

	purchase, err := h.purchaseService.Purchase(c.Request().Context(), req.ProductName, req.Quantity, buyerID)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, PurchaseResponse{
		ID:          purchase.ID.String(),
		ProductName: purchase.ProductName,
		Quantity:    purchase.Quantity,
		Amount:      purchase.Amount.String(),
		UserID:      purchase.UserID,
	})
}

// ListAdminPurchases godoc
// @Summary List all purchases
// @Tags purchases
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Purchase
// @Failure 403 {object} errors.ErrorResponse
// @Router /purchases/admin [get]
func (h *PurchaseHandler) ListAdminPurchases(c echo.Context) error {
	purchases, err := h.purchaseService.ListAll(c.Request().Context())
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, purchases)
}

// ListClientPurchases godoc
// @Summary List purchases for a client
// @Tags purchases
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {array} model.Purchase
// @Failure 403 {object} errors.ErrorResponse
// @Router /purchases/client/{id} [get]
func (h *PurchaseHandler) ListClientPurchases(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}

	callerID, _ := c.Get("user_id").(uint)
	role, _ := c.Get("role").(string)
	if role == string(model.RoleClient) && callerID != id {
		return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}

	purchases, err := h.purchaseService.ListByUser(c.Request().Context(), id)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, purchases)
}
