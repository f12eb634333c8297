package mapper

import (
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/axiskey/mapper/internal/editor"
	"github.com/axiskey/mapper/internal/mapping"
)

// dragStart opens a drag session over one control.
type dragStart struct {
	ID     string      `json:"id"`
	Canvas editor.Rect `json:"canvas"`
}

// dragEvent is one pointer update. X and Y are absolute pointer coordinates
// within the canvas rect; Size comes from a resize handle.
type dragEvent struct {
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
	Size *int     `json:"size,omitempty"`
}

// handleDragWebsocket runs one drag session: the first client frame names the
// control and canvas, every following frame moves or resizes it and is
// answered with the stored control. Closing the connection ends the drag.
func (a *App) handleDragWebsocket(c *gin.Context) {
	scopedLogger := websocketLogger.With().
		Str("remote", c.ClientIP()).
		Str("stream", "drag").Logger()

	conn, err := acceptWebsocket(c)
	if err != nil {
		scopedLogger.Warn().Err(err).Msg("failed to accept websocket")
		return
	}
	defer conn.CloseNow()

	ctx := c.Request.Context()
	var start dragStart
	if err := wsjson.Read(ctx, conn, &start); err != nil {
		scopedLogger.Warn().Err(err).Msg("failed to read drag start")
		conn.Close(websocket.StatusUnsupportedData, "expected a drag start")
		return
	}

	d, ok := a.editor.BeginDrag(start.ID, start.Canvas)
	if !ok {
		_ = wsjson.Write(ctx, conn, wsMessage{Type: "error", Error: "drags need edit mode and a control of the active profile"})
		conn.Close(websocket.StatusPolicyViolation, "drag refused")
		return
	}
	defer d.End()
	scopedLogger.Debug().Str("id", d.ID()).Msg("drag started")

	for {
		var ev dragEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			scopedLogger.Debug().Err(err).Str("id", d.ID()).Msg("drag ended")
			return
		}

		var ctl mapping.Control
		switch {
		case ev.Size != nil:
			ctl, ok = d.Resize(*ev.Size)
		case ev.X != nil && ev.Y != nil:
			ctl, ok = d.Move(*ev.X, *ev.Y)
		default:
			continue
		}
		if !ok {
			_ = wsjson.Write(ctx, conn, wsMessage{Type: "error", Error: "control no longer exists"})
			conn.Close(websocket.StatusPolicyViolation, "control removed")
			return
		}
		if err := wsjson.Write(ctx, conn, wsMessage{Type: "control", Control: &ctl}); err != nil {
			scopedLogger.Warn().Err(err).Msg("failed to send control")
			return
		}
	}
}
