package management

import (
	apphttp "github.com/cnluzhang/tencent-meeting-service/internal/http"
)

// Module registers the dev/management passthrough routes. It mounts
// nothing when the router context carries no Management group (production).
type Module struct {
	handler *Handler
}

// NewModule constructs the management Module.
func NewModule(handler *Handler) *Module {
	return &Module{handler: handler}
}

func (m *Module) Name() string { return "management" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if ctx.Management == nil {
		return
	}
	group := ctx.Management
	group.GET("/meeting-rooms", m.handler.ListRooms)
	group.POST("/meetings", m.handler.CreateMeeting)
	group.POST("/meetings/:id/cancel", m.handler.CancelMeeting)
	group.POST("/meetings/:id/book-rooms", m.handler.BookRooms)
	group.POST("/meetings/:id/release-rooms", m.handler.ReleaseRooms)
}
