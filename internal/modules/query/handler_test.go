package query

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/machinechat/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestRouter(store *fakeStore, llm *fakeCompleter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := newTestService(store, llm)
	passthrough := func(c *gin.Context) { c.Next() }
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r, passthrough)
	return r
}

func postAnswer(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/get-answer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAnswerOK(t *testing.T) {
	store := &fakeStore{
		names: []string{"alarmHistory"},
		docs:  map[string][]bson.M{"alarmHistory": {{"message": "overheat"}}},
	}
	llm := &fakeCompleter{replies: []string{"What is the alarm status?", "One alarm fired."}}

	w := postAnswer(t, newTestRouter(store, llm), `{"query":"alarm status"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "One alarm fired.") {
		t.Errorf("body missing answer: %s", w.Body.String())
	}
}

func TestGetAnswerMissingQuery(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeCompleter{}
	r := newTestRouter(store, llm)

	for _, body := range []string{``, `{}`, `{"query":"   "}`, `not json`} {
		w := postAnswer(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Query is missing") {
			t.Errorf("body %q: response = %s", body, w.Body.String())
		}
	}
	if len(llm.prompts) != 0 || store.findCalls != 0 {
		t.Error("rejected requests must not reach the store or the completion API")
	}
}

func TestGetAnswerUpstreamDown(t *testing.T) {
	store := &fakeStore{
		names: []string{"alarmHistory"},
		docs:  map[string][]bson.M{"alarmHistory": {{"message": "x"}}},
	}
	llm := &fakeCompleter{
		replies: []string{"alarm status"},
		errs:    []error{nil, errors.New("rate limited")},
	}

	w := postAnswer(t, newTestRouter(store, llm), `{"query":"alarm status"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestListHistory(t *testing.T) {
	store := &fakeStore{history: []models.QueryRecord{{Query: "q1", Response: "r1"}}}
	r := newTestRouter(store, &fakeCompleter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history?page=1&size=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	for _, want := range []string{`"r1"`, `"total":1`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("body missing %s: %s", want, w.Body.String())
		}
	}
}

func TestGetAnswerInternalError(t *testing.T) {
	store := &fakeStore{namesErr: errors.New("mongo down: secret dsn")}
	llm := &fakeCompleter{replies: []string{"alarm status"}}

	w := postAnswer(t, newTestRouter(store, llm), `{"query":"alarm status"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret dsn") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}
