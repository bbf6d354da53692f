package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// NotificationHandler exposes the notification inbox for the authenticated
// account. The recipient is always taken from the verified token, never from
// request parameters.
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the account's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	recipient, recipientType := accountID(c), accountType(c)
	if recipient == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	notifications, err := h.notifications.ListForRecipient(requestContext(c), services.ListNotificationsInput{
		Recipient:     recipient,
		RecipientType: recipientType,
		Limit:         parseIntQuery(c, "limit", 25),
		Offset:        parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, notifications)
}

// UnreadCount returns how many notifications remain unread.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	recipient, recipientType := accountID(c), accountType(c)
	if recipient == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	count, err := h.notifications.UnreadCount(requestContext(c), recipient, recipientType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks one owned notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	recipient, recipientType := accountID(c), accountType(c)
	if recipient == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	notification, err := h.notifications.MarkRead(requestContext(c), recipient, recipientType, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, notification)
}

// MarkAllRead marks every notification for the account as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	recipient, recipientType := accountID(c), accountType(c)
	if recipient == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.notifications.MarkAllRead(requestContext(c), recipient, recipientType); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
