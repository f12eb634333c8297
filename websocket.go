package mapper

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/axiskey/mapper/internal/activation"
	"github.com/axiskey/mapper/internal/mapping"
)

// wsMessage is one server frame of the activation and drag streams.
type wsMessage struct {
	Type    string             `json:"type"`
	Line    *activation.Line   `json:"line,omitempty"`
	Result  *activation.Result `json:"result,omitempty"`
	Control *mapping.Control   `json:"control,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// acceptWebsocket upgrades the request on gin's underlying writer. gin's own
// writer refuses to hijack once the 101 header has gone out.
func acceptWebsocket(c *gin.Context) (*websocket.Conn, error) {
	var w http.ResponseWriter = c.Writer
	if u, ok := c.Writer.(interface{ Unwrap() http.ResponseWriter }); ok {
		w = u.Unwrap()
	}
	return websocket.Accept(w, c.Request, nil)
}
