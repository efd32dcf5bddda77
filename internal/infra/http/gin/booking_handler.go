package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	bookingapp "vidaview/internal/app/handlers/booking"
	"vidaview/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
	Activate(c *gin.Context)
	Complete(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ApartmentID    string `json:"apartment_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TotalMonths    int    `json:"total_months"`
	UtilityDeposit int64  `json:"utility_deposit"`
	AdminFee       int64  `json:"admin_fee"`
	Notes          string `json:"notes"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		Actor:          actor,
		ApartmentID:    req.ApartmentID,
		StartDate:      start,
		EndDate:        end,
		TotalMonths:    req.TotalMonths,
		UtilityDeposit: req.UtilityDeposit,
		AdminFee:       req.AdminFee,
		Notes:          req.Notes,
		RequestKey:     idempotencyKey(c),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	query := bookingapp.ListBookingsQuery{Actor: actor, Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	query := bookingapp.GetBookingQuery{Actor: actor, BookingID: c.Param("id")}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Approve(c *gin.Context) {
	h.transition(c, func(actor access.Actor, id string) commands.Command {
		return bookingapp.ApproveBookingCommand{Actor: actor, BookingID: id}
	})
}

func (h BookingHandler) Reject(c *gin.Context) {
	var req rejectBookingRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.transition(c, func(actor access.Actor, id string) commands.Command {
		return bookingapp.RejectBookingCommand{Actor: actor, BookingID: id, Reason: req.Reason}
	})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, func(actor access.Actor, id string) commands.Command {
		return bookingapp.CancelBookingCommand{Actor: actor, BookingID: id}
	})
}

func (h BookingHandler) Activate(c *gin.Context) {
	h.transition(c, func(actor access.Actor, id string) commands.Command {
		return bookingapp.ActivateBookingCommand{Actor: actor, BookingID: id}
	})
}

func (h BookingHandler) Complete(c *gin.Context) {
	h.transition(c, func(actor access.Actor, id string) commands.Command {
		return bookingapp.CompleteBookingCommand{Actor: actor, BookingID: id}
	})
}

// transition dispatches one lifecycle command for the booking in the path.
func (h BookingHandler) transition(c *gin.Context, build func(access.Actor, string) commands.Command) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[commands.Command, *dto.Booking](c.Request.Context(), h.Commands, build(actor, c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
