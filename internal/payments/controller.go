package payments

import (
	"net/http"
	"strconv"

	"cinematickets/internal/shared/middleware"
	"cinematickets/internal/shared/utils/response"
	"cinematickets/pkg/logger"

	"github.com/gin-gonic/gin"
)

const maxStatementLimit = 100

type Controller struct {
	repo Repository
	log  *logger.Logger
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo, log: logger.GetDefault()}
}

// ListCharges handles GET /api/v1/payments/charges
//
// @Summary  Charges taken from the authenticated account, newest first
// @Tags     payments
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "Maximum number of charges (1-100)"
// @Success  200 {object} response.StandardApiResponse
// @Failure  401 {object} response.StandardApiResponse
// @Router   /payments/charges [get]
func (c *Controller) ListCharges(ctx *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > maxStatementLimit {
		response.Error(ctx, http.StatusBadRequest, "Invalid limit parameter",
			response.ErrorDetail{Code: "INVALID_LIMIT", Message: "limit must be between 1 and 100"})
		return
	}

	charges, err := c.repo.ListByAccount(ctx.Request.Context(), accountID, limit)
	if err != nil {
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.Error(ctx, http.StatusInternalServerError, "Failed to retrieve charges")
		return
	}
	if charges == nil {
		charges = []Charge{}
	}

	response.Success(ctx, http.StatusOK, "Charges retrieved successfully", gin.H{
		"account_id": accountID,
		"charges":    charges,
	})
}
