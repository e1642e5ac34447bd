package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floradex/billing/internal/application/payment/usecases"
	"github.com/floradex/billing/internal/shared/constants"
	"github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/utils"
)

// PaymentHandler serves the public payment endpoints: checkout, vendor
// webhooks, subscription status and payment verification.
type PaymentHandler struct {
	createCheckoutUC        createCheckoutUseCase
	handleWebhookUC         handleWebhookUseCase
	getSubscriptionStatusUC getSubscriptionStatusUseCase
	verifyPaymentUC         verifyPaymentUseCase
	logger                  logger.Interface
}

func NewPaymentHandler(
	createCheckoutUC createCheckoutUseCase,
	handleWebhookUC handleWebhookUseCase,
	getSubscriptionStatusUC getSubscriptionStatusUseCase,
	verifyPaymentUC verifyPaymentUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createCheckoutUC:        createCheckoutUC,
		handleWebhookUC:         handleWebhookUC,
		getSubscriptionStatusUC: getSubscriptionStatusUC,
		verifyPaymentUC:         verifyPaymentUC,
		logger:                  logger,
	}
}

type CreateCheckoutRequest struct {
	PlanID        uint              `json:"plan_id" binding:"required"`
	Currency      string            `json:"currency" binding:"required,len=3"`
	Region        string            `json:"region" binding:"required,len=2"`
	Provider      string            `json:"provider"`
	Amount        *int64            `json:"amount" binding:"omitempty,gt=0"`
	CustomerEmail string            `json:"customer_email" binding:"required,email"`
	CustomerName  string            `json:"customer_name" binding:"max=128"`
	CustomerID    string            `json:"customer_id" binding:"max=64"`
	ReturnURL     string            `json:"return_url" binding:"omitempty,url"`
	Metadata      map[string]string `json:"metadata"`
}

// CreateCheckout handles POST /api/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for checkout", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), usecases.CreateCheckoutCommand{
		PlanID:        req.PlanID,
		Currency:      req.Currency,
		Region:        req.Region,
		Provider:      req.Provider,
		Amount:        req.Amount,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerID:    req.CustomerID,
		ReturnURL:     req.ReturnURL,
		Metadata:      req.Metadata,
	})
	if err != nil {
		h.logger.Warnw("checkout failed",
			"plan_id", req.PlanID,
			"provider", req.Provider,
			"customer_email", utils.MaskEmail(req.CustomerEmail),
			"error", err,
		)
		utils.ErrorResponseWithError(c, checkoutError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Checkout created", result)
}

func checkoutError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	mapped := paymentAppError(err, "Checkout failed")
	if errors.IsAppError(mapped) {
		return mapped
	}
	return errors.NewInternalError("Checkout failed", err.Error()).WithCause(err)
}

// HandleWebhook handles POST /api/webhooks/:provider. Vendors retry on any
// non-2xx status, so only signature and routing problems get a 4xx.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	provider := c.Param("provider")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "webhook body too large")
			return
		}
		h.logger.Warnw("failed to read webhook body", "provider", provider, "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read webhook body")
		return
	}

	result, err := h.handleWebhookUC.Execute(c.Request.Context(), usecases.HandleWebhookCommand{
		Provider: provider,
		Body:     body,
		Headers:  c.Request.Header,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, webhookError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func webhookError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	mapped := errors.GetAppError(paymentAppError(err, ""))
	if mapped == nil || mapped.Code == http.StatusBadGateway {
		return errors.NewInternalError("Webhook processing failed").WithCause(err)
	}
	return mapped
}

// GetSubscriptionStatus handles GET /api/subscriptions/:provider/:id/status.
// ?refresh=true bypasses the status cache.
func (h *PaymentHandler) GetSubscriptionStatus(c *gin.Context) {
	result, err := h.getSubscriptionStatusUC.Execute(c.Request.Context(), usecases.GetSubscriptionStatusQuery{
		Provider:       c.Param("provider"),
		SubscriptionID: c.Param("id"),
		SkipCache:      c.Query("refresh") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// VerifyPayment handles POST /api/payments/:provider/:id/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	result, err := h.verifyPaymentUC.Execute(c.Request.Context(), usecases.VerifyPaymentQuery{
		Provider:  c.Param("provider"),
		PaymentID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
