package server

import (
	"context"
	"encoding/json"
	"net/http"

	"toorak_vpn/internal/model"
	"toorak_vpn/internal/utils/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandleStream upgrades to a websocket. Each Message read is processed and
// answered with one StreamEvent, in order.
func (s *HttpServer) HandleStream() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("clientID")
		if clientID == "" {
			http.Error(w, "clientID cannot be empty", http.StatusBadRequest)
			return
		}

		// reserve the id before upgrading so a concurrent dial sees it
		s.mu.Lock()
		if _, dup := s.mapper[clientID]; dup {
			s.mu.Unlock()
			http.Error(w, "duplicated clientID", http.StatusBadRequest)
			return
		}
		s.mapper[clientID] = nil
		s.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("websocket upgrade failed", zap.Error(err))
			s.mu.Lock()
			delete(s.mapper, clientID)
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.mapper[clientID] = conn
		s.mu.Unlock()

		go s.processStream(clientID, conn)
	}
}

func (s *HttpServer) processStream(clientID string, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		if s.mapper[clientID] == conn {
			delete(s.mapper, clientID)
		}
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug("stream closed", zap.String("client", clientID), zap.Error(err))
			return
		}

		var event model.StreamEvent
		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error("unmarshal message failed", zap.String("client", clientID), zap.Error(err))
			event.Error = err.Error()
		} else {
			event.MessageID = msg.ID
			rec, err := s.router.Process(context.Background(), &msg)
			if err != nil {
				log.Error("process stream message failed", zap.String("id", msg.ID), zap.Error(err))
				event.Error = err.Error()
			} else {
				event.Record = rec
			}
		}

		if err := conn.WriteJSON(&event); err != nil {
			log.Debug("stream write failed", zap.String("client", clientID), zap.Error(err))
			return
		}
	}
}
