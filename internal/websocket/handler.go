package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
	"golang.org/x/time/rate"
)

// Limits caps how fast a single connection may send commands. A zero Rate
// disables throttling.
type Limits struct {
	Rate  rate.Limit
	Burst int
}

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients dispatching commands to commands.
func HandleWebSocket(hub *Hub, commands CommandHandler, limits Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // household LAN clients connect from any origin
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "remote", r.RemoteAddr, "error", err)
			return
		}

		var limiter *rate.Limiter
		if limits.Rate > 0 {
			limiter = rate.NewLimiter(limits.Rate, max(limits.Burst, 1))
		}

		hub.logger.Debug("client connected", "remote", r.RemoteAddr)
		NewClient(hub, conn, commands, limiter).Run(r.Context())
		hub.logger.Debug("client disconnected", "remote", r.RemoteAddr)
	}
}
