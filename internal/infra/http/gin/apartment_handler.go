package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	apartmentsapp "vidaview/internal/app/handlers/apartments"
	"vidaview/internal/app/queries"
)

type ApartmentHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	UpdatePricing(c *gin.Context)
}

type ApartmentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createApartmentRequest struct {
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Address     string `json:"address"`
	City        string `json:"city"`
	MonthlyRent int64  `json:"monthly_rent"`
	Deposit     int64  `json:"deposit"`
	Currency    string `json:"currency"`
}

type updatePricingRequest struct {
	MonthlyRent int64 `json:"monthly_rent"`
	Deposit     int64 `json:"deposit"`
}

func (h ApartmentHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createApartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := apartmentsapp.CreateApartmentCommand{
		Actor:   actor,
		OwnerID: req.OwnerID,
		Payload: apartmentsapp.ApartmentPayload{
			Title:       req.Title,
			Address:     req.Address,
			City:        req.City,
			MonthlyRent: req.MonthlyRent,
			Deposit:     req.Deposit,
			Currency:    req.Currency,
		},
	}
	result, err := commands.Dispatch[apartmentsapp.CreateApartmentCommand, *dto.Apartment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ApartmentHandler) List(c *gin.Context) {
	query := apartmentsapp.ListApartmentsQuery{
		OwnerID: c.Query("owner_id"),
		Status:  c.Query("status"),
	}
	result, err := queries.Ask[apartmentsapp.ListApartmentsQuery, dto.ApartmentCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ApartmentHandler) Get(c *gin.Context) {
	query := apartmentsapp.GetApartmentQuery{ApartmentID: c.Param("id")}
	result, err := queries.Ask[apartmentsapp.GetApartmentQuery, dto.Apartment](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ApartmentHandler) UpdatePricing(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req updatePricingRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := apartmentsapp.UpdatePricingCommand{
		Actor:       actor,
		ApartmentID: c.Param("id"),
		MonthlyRent: req.MonthlyRent,
		Deposit:     req.Deposit,
	}
	result, err := commands.Dispatch[apartmentsapp.UpdatePricingCommand, *dto.Apartment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ApartmentHTTP = ApartmentHandler{}
