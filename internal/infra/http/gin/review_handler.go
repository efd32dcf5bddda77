package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	reviewsapp "vidaview/internal/app/handlers/reviews"
	"vidaview/internal/app/queries"
)

type ReviewsHTTP interface {
	Submit(c *gin.Context)
	ListByApartment(c *gin.Context)
	ListPending(c *gin.Context)
	ListMine(c *gin.Context)
	Approve(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	ApartmentID string   `json:"apartment_id"`
	Rating      int      `json:"rating"`
	Comment     string   `json:"comment"`
	Photos      []string `json:"photos"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		Actor:       actor,
		ApartmentID: req.ApartmentID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Photos:      req.Photos,
	}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("review submit failed", "status", statusFor(err), "error", err)
		}
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h ReviewsHandler) ListByApartment(c *gin.Context) {
	query := reviewsapp.ListApartmentReviewsQuery{
		ApartmentID: c.Param("id"),
		Limit:       parsePositiveInt(c.Query("limit"), 20),
		Offset:      parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListApartmentReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) ListPending(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[reviewsapp.ListPendingReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, reviewsapp.ListPendingReviewsQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[reviewsapp.ListMyReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, reviewsapp.ListMyReviewsQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) Approve(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := reviewsapp.ApproveReviewCommand{Actor: actor, ReviewID: c.Param("id")}
	review, err := commands.Dispatch[reviewsapp.ApproveReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := reviewsapp.DeleteReviewCommand{Actor: actor, ReviewID: c.Param("id")}
	if _, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ ReviewsHTTP = ReviewsHandler{}
