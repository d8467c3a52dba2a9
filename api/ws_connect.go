package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is already enforced by the CORS middleware
	// and the session cookie requirement
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSConnect upgrades an authenticated request to the chat relay. The
// user identity comes from the verified session, never from a query
// parameter the client controls.
func (a *API) WSConnect(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		zap.L().Error("Failed to upgrade relay connection", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.Hub.Serve(conn, userID)
}
