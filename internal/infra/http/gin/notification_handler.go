package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	notificationsapp "vidaview/internal/app/handlers/notifications"
	"vidaview/internal/app/queries"
)

type NotificationHTTP interface {
	List(c *gin.Context)
	UnreadCount(c *gin.Context)
	MarkRead(c *gin.Context)
	MarkAllRead(c *gin.Context)
}

type NotificationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h NotificationHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	query := notificationsapp.ListNotificationsQuery{
		Actor: actor,
		Limit: parsePositiveInt(c.Query("limit"), 50),
	}
	if raw := c.Query("is_read"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_read must be true or false"})
			return
		}
		query.IsRead = &isRead
	}
	result, err := queries.Ask[notificationsapp.ListNotificationsQuery, dto.NotificationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[notificationsapp.UnreadCountQuery, dto.UnreadCount](c.Request.Context(), h.Queries, notificationsapp.UnreadCountQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := notificationsapp.MarkReadCommand{Actor: actor, NotificationID: c.Param("id")}
	result, err := commands.Dispatch[notificationsapp.MarkReadCommand, *dto.Notification](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[notificationsapp.MarkAllReadCommand, *dto.MarkedRead](c.Request.Context(), h.Commands, notificationsapp.MarkAllReadCommand{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ NotificationHTTP = NotificationHandler{}
