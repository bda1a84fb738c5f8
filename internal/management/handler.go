// Package management exposes direct upstream passthrough endpoints used
// for local development and operational debugging: listing rooms and
// issuing meeting/room operations without going through the webhook-driven
// submission flow. Disabled in production, per internal/http/router.
package management

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
	"github.com/cnluzhang/tencent-meeting-service/platform/httpkit"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"
	"github.com/cnluzhang/tencent-meeting-service/platform/validator"

	"github.com/gin-gonic/gin"
)

// RoomLister is the subset of *roomcache.Cache the handler depends on.
type RoomLister interface {
	Get(ctx context.Context, page, pageSize int) (tencent.MeetingRoomsResponse, error)
}

// UpstreamClient is the subset of *tencent.Client the handler depends on.
type UpstreamClient interface {
	CreateMeeting(ctx context.Context, req tencent.CreateMeetingRequest) (tencent.CreateMeetingResponse, error)
	CancelMeeting(ctx context.Context, meetingID string, req tencent.CancelMeetingRequest) error
	BookRooms(ctx context.Context, meetingID string, req tencent.BookRoomsRequest) error
	ReleaseRooms(ctx context.Context, meetingID string, req tencent.ReleaseRoomsRequest) error
}

// Handler adapts HTTP requests directly onto the upstream client, bypassing
// the submission orchestrator and ledger entirely.
type Handler struct {
	rooms  RoomLister
	client UpstreamClient
	val    *validator.Validator
	log    *logger.Logger
}

// New constructs a management Handler.
func New(rooms RoomLister, client UpstreamClient, log *logger.Logger) *Handler {
	return &Handler{rooms: rooms, client: client, val: validator.New(), log: log}
}

// ListRooms handles GET /meeting-rooms?page=N&page_size=M.
func (h *Handler) ListRooms(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	resp, err := h.rooms.Get(c.Request.Context(), page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateMeeting handles POST /meetings.
func (h *Handler) CreateMeeting(c *gin.Context) {
	var req tencent.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("management: malformed request body: "+err.Error()))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("management: "+err.Error()))
		return
	}
	resp, err := h.client.CreateMeeting(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelMeeting handles POST /meetings/:id/cancel.
func (h *Handler) CancelMeeting(c *gin.Context) {
	var req tencent.CancelMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("management: malformed request body: "+err.Error()))
		return
	}
	if err := h.client.CancelMeeting(c.Request.Context(), c.Param("id"), req); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// BookRooms handles POST /meetings/:id/book-rooms.
func (h *Handler) BookRooms(c *gin.Context) {
	var req tencent.BookRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("management: malformed request body: "+err.Error()))
		return
	}
	if err := h.client.BookRooms(c.Request.Context(), c.Param("id"), req); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReleaseRooms handles POST /meetings/:id/release-rooms.
func (h *Handler) ReleaseRooms(c *gin.Context) {
	var req tencent.ReleaseRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("management: malformed request body: "+err.Error()))
		return
	}
	if err := h.client.ReleaseRooms(c.Request.Context(), c.Param("id"), req); httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
