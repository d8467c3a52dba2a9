package api

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// magic GUID from RFC 6455 used to derive Sec-WebSocket-Accept
const wsAcceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// WSHandshake is a probe endpoint for clients that resolve the relay
// location before connecting. It answers the opening handshake with
// a Location header carrying the relay URL for the calling user, but
// doesn't take over the socket; the actual relay lives at /api/ws.
func (a *API) WSHandshake(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Expected WebSocket connection",
			"requestID": requestID,
		})
		return
	}

	scheme := "ws"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "wss"
	}

	location := fmt.Sprintf("%s://%s:%d/api/ws?userId=%s",
		scheme, viper.GetString("host.domain"), viper.GetInt("host.port"), userID)

	h := c.Writer.Header()
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Accept", acceptKey(c.GetHeader("Sec-WebSocket-Key")))
	h.Set("Location", location)
	c.Status(http.StatusSwitchingProtocols)
}

func acceptKey(key string) string {
	sum := sha1.Sum([]byte(key + wsAcceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}
