package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Comcast/casematch/value"

	"github.com/gorilla/websocket"
)

// WebSocketHandler serves the Request/Response protocol.  Each text
// message is a Request, and each Request gets exactly one Response.
func (s *Service) WebSocketHandler(ctx context.Context) http.HandlerFunc {

	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		s.logf("WebSocketHandler connection from %s", r.RemoteAddr)

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Println("read error", err)
				}
				break
			}

			var resp *Response
			var req Request
			if err := value.DecodeJSON(message, &req); err != nil {
				resp = &Response{
					Error: fmt.Sprintf("can't parse: %v", err),
				}
			} else {
				resp = s.Process(ctx, &req)
			}

			js, err := json.Marshal(resp)
			if err != nil {
				log.Printf("Marshal error %v on %#v", err, resp)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("write error", err)
				break
			}
		}
	}
}
