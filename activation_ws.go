package mapper

import (
	"context"
	"errors"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/axiskey/mapper/internal/activation"
)

// handleActivationWebsocket reads one activation request from the client and
// streams the log lines while the flow plays, then the result. Closing the
// connection cancels the flow.
func (a *App) handleActivationWebsocket(c *gin.Context) {
	scopedLogger := websocketLogger.With().
		Str("remote", c.ClientIP()).Logger()

	conn, err := acceptWebsocket(c)
	if err != nil {
		scopedLogger.Warn().Err(err).Msg("failed to accept websocket")
		return
	}
	defer conn.CloseNow()

	ctx := c.Request.Context()
	var req activation.Request
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		scopedLogger.Warn().Err(err).Msg("failed to read activation request")
		conn.Close(websocket.StatusUnsupportedData, "expected an activation request")
		return
	}

	ctx, cancel := context.WithCancel(conn.CloseRead(ctx))
	defer cancel()

	res, err := a.Activate(ctx, req, func(l activation.Line) {
		if err := wsjson.Write(ctx, conn, wsMessage{Type: "line", Line: &l}); err != nil {
			scopedLogger.Warn().Err(err).Msg("failed to send activation line")
			cancel()
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			scopedLogger.Info().Msg("activation stream closed by client")
			return
		}
		_ = wsjson.Write(ctx, conn, wsMessage{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "activation refused")
		return
	}

	if err := wsjson.Write(ctx, conn, wsMessage{Type: "result", Result: &res}); err != nil {
		scopedLogger.Warn().Err(err).Msg("failed to send activation result")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
	scopedLogger.Info().Str("status", string(res.Status)).Msg("activation stream finished")
}
