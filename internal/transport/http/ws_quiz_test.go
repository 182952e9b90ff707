package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"streakpeaked-service/internal/app"
	"streakpeaked-service/internal/chat"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/infra/memory"
	"streakpeaked-service/internal/matchmaking"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewScoreStore()
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string][]domain.Question{
		"ssc-cgl": sampleBank(),
	}), time.Minute)
	service := app.NewQuizService(
		banks, store, store,
		memory.NewSessionStore(),
		chat.NewHub(memory.NewChatHistory(50)),
		matchmaking.NewMemoryQueue(),
		0,
	)
	wsHandler := NewWSHandler(service)
	apiHandler := NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/quiz", wsHandler.ServeQuiz)
	mux.HandleFunc("/ws/chat", wsHandler.ServeChat)
	mux.HandleFunc("/api/match/join", apiHandler.JoinMatch)
	mux.HandleFunc("/api/match/leave", apiHandler.LeaveMatch)
	mux.HandleFunc("/api/scores", apiHandler.Scores)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			ID: "q1", Section: domain.SectionMaths, Level: domain.LevelEasy,
			Question: "What is 2 + 2?",
			Options:  []string{"4", "3", "5", "6"},
			Answer:   "A",
		},
		{
			ID: "q2", Section: domain.SectionGK, Level: domain.LevelEasy,
			Question: "Capital of France?",
			Options:  []string{"Paris", "London"},
			Answer:   "Paris",
		},
	}
}

func dialWS(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips interleaved tick/band traffic and returns the first
// message of the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type != want {
			continue
		}
		var payload map[string]any
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatalf("decode %s payload: %v", want, err)
			}
		}
		return payload
	}
	t.Fatalf("never received %q", want)
	return nil
}

func sendWS(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestQuizSocketFullRun(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "/ws/quiz?userId=u1&name=Alice&exam=ssc-cgl")

	q := readUntil(t, conn, "question")
	if q["total"].(float64) != 2 {
		t.Fatalf("expected 2 questions, got %v", q["total"])
	}
	if _, leaked := q["answer"]; leaked {
		t.Fatalf("canonical answer leaked to client: %v", q)
	}

	// Both bank questions have their first option correct.
	options := q["options"].([]any)
	sendWS(t, conn, "answer", map[string]any{"option": options[0].(string)})

	res := readUntil(t, conn, "answerResult")
	if res["correct"] != true || res["streak"].(float64) != 1 {
		t.Fatalf("expected correct first answer, got %v", res)
	}

	q = readUntil(t, conn, "question")
	if q["index"].(float64) != 1 {
		t.Fatalf("expected second question, got %v", q)
	}

	// A wrong answer terminates the run and delivers the score record.
	sendWS(t, conn, "answer", map[string]any{"option": "definitely wrong"})
	res = readUntil(t, conn, "answerResult")
	if res["correct"] != false || res["terminal"] != true {
		t.Fatalf("expected terminal miss, got %v", res)
	}

	terminal := readUntil(t, conn, "terminal")
	record := terminal["record"].(map[string]any)
	if record["streakScore"].(float64) != 1 || record["questionsAttempted"].(float64) != 2 {
		t.Fatalf("unexpected record: %v", record)
	}
	if terminal["feedback"].(string) == "" {
		t.Fatalf("expected feedback text")
	}

	// Post-terminal answers are dropped.
	sendWS(t, conn, "answer", map[string]any{"option": "anything"})
	res = readUntil(t, conn, "answerResult")
	if res["ignored"] != true {
		t.Fatalf("expected ignored submission, got %v", res)
	}
}

// readNextEvent returns the next message that is not timer traffic, so tests
// can assert strict ordering of the remaining event types.
func readNextEvent(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == "tick" || msg.Type == "band" {
			continue
		}
		var payload map[string]any
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				t.Fatalf("decode %s payload: %v", msg.Type, err)
			}
		}
		return msg.Type, payload
	}
	t.Fatalf("never received a non-timer event")
	return "", nil
}

func TestQuizSocketAnswerResultPrecedesSettledEvents(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "/ws/quiz?userId=u1&name=Alice")

	_, q := readNextEvent(t, conn)
	options := q["options"].([]any)

	// Correct answer: the result must arrive before the next question, even
	// though a zero settle delay advances the engine inside the submit call.
	sendWS(t, conn, "answer", map[string]any{"option": options[0].(string)})
	if typ, _ := readNextEvent(t, conn); typ != "answerResult" {
		t.Fatalf("expected answerResult first, got %q", typ)
	}
	if typ, _ := readNextEvent(t, conn); typ != "question" {
		t.Fatalf("expected question after result, got %q", typ)
	}

	// Wrong answer: same ordering for the terminal event.
	sendWS(t, conn, "answer", map[string]any{"option": "definitely wrong"})
	if typ, _ := readNextEvent(t, conn); typ != "answerResult" {
		t.Fatalf("expected answerResult first, got %q", typ)
	}
	if typ, _ := readNextEvent(t, conn); typ != "terminal" {
		t.Fatalf("expected terminal after result, got %q", typ)
	}
}

func TestQuizSocketFilterToEmptyAndBack(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "/ws/quiz?userId=u1&name=Alice")

	readUntil(t, conn, "question")

	// English matches nothing in the sample bank.
	sendWS(t, conn, "filter", map[string]any{"section": "English", "difficulty": "All"})
	readUntil(t, conn, "empty")

	sendWS(t, conn, "filter", map[string]any{"section": "Maths", "difficulty": "Easy"})
	q := readUntil(t, conn, "question")
	if q["section"].(string) != "Maths" || q["total"].(float64) != 1 {
		t.Fatalf("expected single maths question, got %v", q)
	}
}

func TestQuizSocketRestartResets(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "/ws/quiz?userId=u1&name=Alice")

	readUntil(t, conn, "question")
	sendWS(t, conn, "answer", map[string]any{"option": "definitely wrong"})
	readUntil(t, conn, "terminal")

	sendWS(t, conn, "restart", map[string]any{})
	q := readUntil(t, conn, "question")
	if q["index"].(float64) != 0 {
		t.Fatalf("expected restart at question 0, got %v", q)
	}
}

func TestQuizSocketRequiresIdentity(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws/quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
