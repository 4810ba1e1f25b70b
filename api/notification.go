package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/rs/zerolog/log"
)

const sseKeepAliveInterval = 25 * time.Second

var ErrNotificationNotFound = errors.New("notification not found")

//	@Summary		List own notifications
//	@Tags			notifications
//	@Produce		json
//	@Security		accessToken
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{array}		db.Notification
//	@Router			/users/me/notifications [get]
func (server *Server) listNotifications(c *gin.Context) {
	user := currentUser(c)

	notifications, err := server.store.ListNotifications(c, user.ID, queryLimit(c))
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to list notifications")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, notifications)
}

//	@Summary		Mark a notification as read
//	@Tags			notifications
//	@Security		accessToken
//	@Param			notificationID	path	string	true	"Notification ID"
//	@Success		204
//	@Failure		404	{object}	map[string]string
//	@Router			/users/me/notifications/{notificationID}/read [patch]
func (server *Server) markNotificationRead(c *gin.Context) {
	user := currentUser(c)

	err := server.store.MarkNotificationRead(c, user.ID, c.Param("notificationID"))
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrNotificationNotFound))
			return
		}

		log.Err(err).Str("user_id", user.ID).Msg("failed to mark notification read")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.Status(http.StatusNoContent)
}

//	@Summary		Stream notifications via Server-Sent Events
//	@Description	Browsers cannot set headers on EventSource, so the access token may be passed as the access_token query parameter
//	@Tags			notifications
//	@Produce		text/event-stream
//	@Security		accessToken
//	@Param			access_token	query		string	false	"Access token"
//	@Success		200				{string}	string	"Event stream with format 'event: {eventType}\ndata: {jsonData}'"
//	@Router			/users/me/notifications/stream [get]
func (server *Server) streamNotifications(c *gin.Context) {
	user := currentUser(c)
	topic := event.UserTopic(user.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	client := event.NewClient()
	server.eventSender.Register(topic, client)
	defer server.eventSender.Unregister(topic, client)

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case evt := <-client:
			data, err := json.Marshal(evt.Data)
			if err != nil {
				log.Err(err).Str("topic", topic).Msg("failed to encode event")
				continue
			}

			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evt.Type, data)
			c.Writer.Flush()
		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
