package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"streakpeaked-service/internal/app"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/engine"
)

// DefaultExam is assumed when the client does not name one.
const DefaultExam = "ssc-cgl"

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
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

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type filterPayload struct {
	Section    string `json:"section"`
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Option string `json:"option"`
}

// questionView is the client-facing question shape; the canonical answer
// never goes over the wire.
type questionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Section  string   `json:"section"`
	Level    string   `json:"level"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type answerResult struct {
	Ignored  bool `json:"ignored"`
	Correct  bool `json:"correct"`
	Streak   int  `json:"streak"`
	Terminal bool `json:"terminal"`
}

type tickPayload struct {
	QuestionSeconds int `json:"questionSeconds"`
	SessionSeconds  int `json:"sessionSeconds"`
}

type bandPayload struct {
	Band    string `json:"band"`
	BlinkOn bool   `json:"blinkOn"`
}

type terminalPayload struct {
	Record   domain.ScoreRecord `json:"record"`
	Feedback string             `json:"feedback"`
}

// ServeQuiz upgrades the connection and drives one streak-quiz session over
// it: question delivery, per-second ticks, urgency band changes, and the
// final score record all flow through a single writer goroutine.
func (h *WSHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if userID == "" || displayName == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}
	exam := r.URL.Query().Get("exam")
	if exam == "" {
		exam = DefaultExam
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 32)
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

	// push delivers engine callbacks without blocking them: a backed-up
	// connection drops presentation events rather than stalling the session.
	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	// Settled events (advance, terminal) must reach the client after the
	// answerResult for the submission that produced them. With a zero settle
	// delay the engine fires them inside SubmitAnswer, so the read loop holds
	// them back until the result has been pushed.
	var settleMu sync.Mutex
	var holdSettled bool
	var heldSettled []func()
	settled := func(f func()) {
		settleMu.Lock()
		if holdSettled {
			heldSettled = append(heldSettled, f)
			settleMu.Unlock()
			return
		}
		settleMu.Unlock()
		f()
	}

	var session *engine.Session
	sendQuestion := func() {
		if q, idx, ok := session.Current(); ok {
			push(outboundMessage[any]{Type: "question", Payload: questionView{
				Index:    idx,
				Total:    session.Len(),
				Section:  string(q.Section),
				Level:    string(q.Level),
				Question: q.Question,
				Options:  q.Options,
			}})
			return
		}
		if session.State() == engine.StateEmpty {
			push(outboundMessage[any]{Type: "empty", Payload: struct{}{}})
		}
	}

	session, err = h.service.StartSession(r.Context(), userID, exam,
		domain.Filter{Section: domain.FilterAll, Difficulty: domain.FilterAll},
		engine.Callbacks{
			// The next question becomes current only once the settle delay
			// elapses, so delivery hangs off the advance callback.
			OnQuestionAdvance: func(int) { settled(sendQuestion) },
			OnBandChange: func(band engine.Band, blinkOn bool) {
				push(outboundMessage[any]{Type: "band", Payload: bandPayload{Band: band.String(), BlinkOn: blinkOn}})
			},
			OnTerminal: func(rec domain.ScoreRecord) {
				settled(func() {
					push(outboundMessage[any]{Type: "terminal", Payload: terminalPayload{
						Record:   rec,
						Feedback: engine.Feedback(rec),
					}})
				})
			},
		})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		close(closeSignals)
		close(send)
		<-writerDone
		return
	}
	defer h.service.EndSession(userID, session)

	sendQuestion()

	// One tick per second; the band callback handles urgency transitions.
	tickerDone := make(chan struct{})
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				info := session.Tick()
				if info.State != engine.StateInProgress {
					continue
				}
				push(outboundMessage[any]{Type: "tick", Payload: tickPayload{
					QuestionSeconds: info.QuestionSeconds,
					SessionSeconds:  info.SessionSeconds,
				}})
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			settleMu.Lock()
			holdSettled = true
			settleMu.Unlock()

			res := session.SubmitAnswer(payload.Option)
			push(outboundMessage[any]{Type: "answerResult", Payload: answerResult{
				Ignored:  res.Ignored,
				Correct:  res.Correct,
				Streak:   res.Streak,
				Terminal: res.Terminal,
			}})

			settleMu.Lock()
			holdSettled = false
			held := heldSettled
			heldSettled = nil
			settleMu.Unlock()
			for _, f := range held {
				f()
			}
		case "filter":
			var payload filterPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid filter payload"}})
				continue
			}
			session.SetFilter(domain.Filter{Section: payload.Section, Difficulty: payload.Difficulty})
			sendQuestion()
		case "restart":
			session.Restart()
			sendQuestion()
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}
