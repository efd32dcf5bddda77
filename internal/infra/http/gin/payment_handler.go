package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	paymentsapp "vidaview/internal/app/handlers/payments"
	"vidaview/internal/app/queries"
)

type PaymentHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListForBooking(c *gin.Context)
	Confirm(c *gin.Context)
	Fail(c *gin.Context)
	Refund(c *gin.Context)
}

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPaymentRequest struct {
	BookingID string `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Type      string `json:"payment_type"`
	Method    string `json:"payment_method"`
	DueDate   string `json:"due_date"`
	Notes     string `json:"notes"`
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}

type failPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h PaymentHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := paymentsapp.CreatePaymentCommand{
		Actor:      actor,
		BookingID:  req.BookingID,
		Amount:     req.Amount,
		Type:       req.Type,
		Method:     req.Method,
		DueDate:    due,
		Notes:      req.Notes,
		RequestKey: idempotencyKey(c),
	}
	result, err := commands.Dispatch[paymentsapp.CreatePaymentCommand, *dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	query := paymentsapp.GetPaymentQuery{Actor: actor, PaymentID: c.Param("id")}
	result, err := queries.Ask[paymentsapp.GetPaymentQuery, dto.Payment](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) ListForBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	query := paymentsapp.ListBookingPaymentsQuery{Actor: actor, BookingID: c.Param("booking_id")}
	result, err := queries.Ask[paymentsapp.ListBookingPaymentsQuery, dto.PaymentCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) Confirm(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	cmd := paymentsapp.ConfirmPaymentCommand{Actor: actor, PaymentID: c.Param("id"), TransactionID: req.TransactionID}
	h.settle(c, cmd)
}

func (h PaymentHandler) Fail(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req failPaymentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	cmd := paymentsapp.FailPaymentCommand{Actor: actor, PaymentID: c.Param("id"), Reason: req.Reason}
	h.settle(c, cmd)
}

func (h PaymentHandler) Refund(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.settle(c, paymentsapp.RefundPaymentCommand{Actor: actor, PaymentID: c.Param("id")})
}

func (h PaymentHandler) settle(c *gin.Context, cmd commands.Command) {
	result, err := commands.Dispatch[commands.Command, *dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
