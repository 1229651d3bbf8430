package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"tugofwar-quiz-service/internal/app"
	"tugofwar-quiz-service/internal/domain"
)

// WSHandler multiplexes game events over websockets. It is dispatch only:
// inbound actions are routed to GameService operations and session events are
// fanned out to the connection; no gameplay rules live here.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Group         int    `json:"group"`
}

type startPayload struct {
	SessionID  string `json:"sessionId"`
	Credential string `json:"credential"`
}

type answerPayload struct {
	SessionID string `json:"sessionId"`
	// Answer tolerates both string and numeric JSON values.
	Answer any `json:"answer"`
}

type sessionCreatedPayload struct {
	SessionID string `json:"sessionId"`
}

type joinedPayload struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func newParticipantID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// use cases. A connection serves at most one participant in one session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var (
		code          string
		participantID string
		cancelEvents  func()
		updatesDone   chan struct{}
	)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "createSession":
			sessionID, err := h.service.CreateSession(r.Context())
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "sessionCreated", Payload: sessionCreatedPayload{SessionID: sessionID}}

		case "join":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID == "" || payload.Name == "" {
				send <- errorMessage(errors.New("invalid join payload"))
				continue
			}
			if code != "" {
				send <- errorMessage(errors.New("already joined a session"))
				continue
			}
			pid := payload.ParticipantID
			if pid == "" {
				pid = newParticipantID()
			}

			if _, err := h.service.Join(r.Context(), payload.SessionID, pid, payload.Name, payload.Group); err != nil {
				send <- errorMessage(err)
				continue
			}
			events, cancel, err := h.service.Subscribe(r.Context(), payload.SessionID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}

			code = payload.SessionID
			participantID = pid
			cancelEvents = cancel
			updatesDone = make(chan struct{})

			go func() {
				defer close(updatesDone)
				for {
					select {
					case ev, ok := <-events:
						if !ok {
							return
						}
						select {
						case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev.Payload}:
						case <-closeSignals:
							return
						}
					case <-closeSignals:
						return
					}
				}
			}()

			send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{SessionID: code, ParticipantID: participantID}}

		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID == "" {
				send <- errorMessage(errors.New("invalid start payload"))
				continue
			}
			switch err := h.service.Start(r.Context(), payload.SessionID, payload.Credential); {
			case errors.Is(err, domain.ErrAuthorizationDenied):
				send <- outboundMessage[any]{Type: "startDenied", Payload: struct{}{}}
			case errors.Is(err, domain.ErrInvalidState):
				// Already started or finished; nothing to tell the caller.
			case err != nil:
				send <- errorMessage(err)
			}

		case "answer":
			if code == "" || participantID == "" {
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID != code {
				continue
			}
			result, deliver := h.service.SubmitAnswer(r.Context(), code, participantID, fmt.Sprint(payload.Answer))
			if deliver {
				send <- outboundMessage[any]{Type: "answerResult", Payload: result}
			}

		default:
			send <- errorMessage(errors.New("unsupported message type"))
		}
	}

	if cancelEvents != nil {
		cancelEvents()
	}
	if code != "" && participantID != "" {
		h.service.Leave(r.Context(), code, participantID)
	}

	close(closeSignals)
	if updatesDone != nil {
		<-updatesDone
	}
	close(send)
	<-writerDone
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
