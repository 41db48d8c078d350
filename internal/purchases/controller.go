package purchases

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cinematickets/internal/shared/middleware"
	"cinematickets/internal/shared/utils/response"
	"cinematickets/internal/tickets"
	"cinematickets/pkg/cache"
	"cinematickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service     Service
	validator   *validator.Validate
	idempotency *idempotencyGuard
	log         *logger.Logger
}

// NewController creates the purchase controller. A nil idempotency cache disables Idempotency-Key support.
func NewController(service Service, idempotencyCache cache.Service, idempotencyTTL time.Duration) *Controller {
	return &Controller{
		service:     service,
		validator:   validator.New(),
		idempotency: newIdempotencyGuard(idempotencyCache, idempotencyTTL),
		log:         logger.GetDefault(),
	}
}

// GetPrices handles GET /api/v1/purchases/prices
//
// @Summary  Ticket price list
// @Tags     purchases
// @Produce  json
// @Success  200 {object} response.StandardApiResponse
// @Router   /purchases/prices [get]
func (c *Controller) GetPrices(ctx *gin.Context) {
	response.Success(ctx, http.StatusOK, "Prices retrieved successfully", PriceList())
}

// QuotePurchase handles POST /api/v1/purchases/quote
//
// @Summary  Validate and price a purchase without charging
// @Tags     purchases
// @Accept   json
// @Produce  json
// @Param    request body PurchaseRequest true "Tickets to price"
// @Success  200 {object} response.StandardApiResponse
// @Failure  422 {object} response.StandardApiResponse
// @Router   /purchases/quote [post]
func (c *Controller) QuotePurchase(ctx *gin.Context) {
	req, ok := c.bindRequest(ctx)
	if !ok {
		return
	}

	quote, err := c.service.Quote(ctx.Request.Context(), req)
	if err != nil {
		c.handleError(ctx, req, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Purchase is valid", quote)
}

// CreatePurchase handles POST /api/v1/purchases
//
// @Summary  Purchase tickets
// @Tags     purchases
// @Accept   json
// @Produce  json
// @Param    Idempotency-Key header string false "Makes the request safe to retry"
// @Param    request body PurchaseRequest true "Tickets to purchase"
// @Success  201 {object} response.StandardApiResponse
// @Failure  402 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Failure  422 {object} response.StandardApiResponse
// @Failure  503 {object} response.StandardApiResponse
// @Failure  502 {object} response.StandardApiResponse
// @Router   /purchases [post]
func (c *Controller) CreatePurchase(ctx *gin.Context) {
	req, ok := c.bindRequest(ctx)
	if !ok {
		return
	}

	key := ctx.GetHeader(IdempotencyHeader)
	if key != "" && c.idempotency != nil {
		if !c.claimIdempotencyKey(ctx, req, key) {
			return
		}
	}

	purchase, err := c.service.Purchase(ctx.Request.Context(), req)
	if err != nil {
		// A charged purchase keeps its key locked so a retry cannot charge twice
		var reservationErr *ReservationError
		if key != "" && c.idempotency != nil && !errors.As(err, &reservationErr) {
			if releaseErr := c.idempotency.release(ctx.Request.Context(), req.AccountID, key); releaseErr != nil {
				c.log.ErrorContext(ctx.Request.Context(), "Failed to release idempotency key",
					slog.String("key", key), slog.Any("error", releaseErr))
			}
		}
		c.handleError(ctx, req, err)
		return
	}

	if key != "" && c.idempotency != nil {
		if err := c.idempotency.complete(ctx.Request.Context(), req, key, purchase); err != nil {
			c.log.ErrorContext(ctx.Request.Context(), "Failed to store idempotent purchase",
				slog.String("key", key), slog.Any("error", err))
		}
	}

	response.Success(ctx, http.StatusCreated, "Purchase completed successfully", purchase)
}

// claimIdempotencyKey replays a finished purchase or locks the key. It returns false once it has responded.
func (c *Controller) claimIdempotencyKey(ctx *gin.Context, req PurchaseRequest, key string) bool {
	previous, err := c.idempotency.begin(ctx.Request.Context(), req, key)
	switch {
	case errors.Is(err, errIdempotencyMismatch):
		response.Error(ctx, http.StatusUnprocessableEntity, "Idempotency key reused",
			response.ErrorDetail{Code: "IDEMPOTENCY_KEY_REUSED", Message: err.Error()})
		return false
	case errors.Is(err, errIdempotencyInProgress):
		response.Error(ctx, http.StatusConflict, "A purchase with this idempotency key is in progress or needs attention")
		return false
	case err != nil:
		c.log.LogHTTPError(ctx, err, http.StatusServiceUnavailable)
		response.Error(ctx, http.StatusServiceUnavailable, "Idempotency store unavailable")
		return false
	case previous != nil:
		ctx.Header("Idempotent-Replayed", "true")
		response.Success(ctx, http.StatusCreated, "Purchase completed successfully", previous)
		return false
	}
	return true
}

// bindRequest decodes and checks the body; an authenticated account overrides the one in the body
func (c *Controller) bindRequest(ctx *gin.Context) (PurchaseRequest, bool) {
	var req PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body",
			response.ErrorDetail{Code: "INVALID_BODY", Message: err.Error()})
		return req, false
	}

	if err := c.validator.Struct(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body",
			response.ErrorDetail{Code: "INVALID_BODY", Message: err.Error()})
		return req, false
	}

	if accountID, ok := middleware.AccountIDFromContext(ctx); ok {
		req.AccountID = accountID
	}
	return req, true
}

func (c *Controller) handleError(ctx *gin.Context, req PurchaseRequest, err error) {
	var (
		paymentErr     *PaymentError
		reservationErr *ReservationError
	)

	// Gateway and reservation failures can wrap a ValidationError of their own
	switch {
	case errors.As(err, &paymentErr):
		response.Error(ctx, http.StatusPaymentRequired, "Payment failed",
			response.ErrorDetail{Code: "PAYMENT_FAILED", Message: paymentErr.Err.Error()})

	case errors.As(err, &reservationErr):
		c.log.LogHTTPError(ctx, err, http.StatusBadGateway)
		response.RespondJSON(ctx, response.StatusError, http.StatusBadGateway,
			"Seat reservation failed after payment", gin.H{
				"account_id":     reservationErr.AccountID,
				"charged_amount": reservationErr.ChargedAmount,
				"seats":          reservationErr.Seats,
			}, []response.ErrorDetail{{Code: "RESERVATION_FAILED", Message: reservationErr.Err.Error()}})
		ctx.Abort()

	case tickets.IsValidationError(err):
		response.Error(ctx, http.StatusUnprocessableEntity, "Invalid purchase",
			violationDetails(tickets.Violations(req.AccountID, req.LineItems()))...)

	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.Error(ctx, http.StatusInternalServerError, "Failed to process purchase")
	}
}

func violationDetails(errs []error) []response.ErrorDetail {
	details := make([]response.ErrorDetail, 0, len(errs))
	for _, err := range errs {
		var ve *tickets.ValidationError
		if !errors.As(err, &ve) {
			continue
		}
		detail := response.ErrorDetail{Code: string(ve.Code), Message: ve.Message}
		if ve.Index >= 0 {
			index := ve.Index
			detail.Index = &index
		}
		details = append(details, detail)
	}
	return details
}
