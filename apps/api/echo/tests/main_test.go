package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	. "github.com/neurolearn/neuro/apps/api/echo"
	"github.com/neurolearn/neuro/apps/shared"
	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/emotion"
	"github.com/neurolearn/neuro/core/flashcard"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/storage/database/inmem"
)

const frontendOrigin = "http://localhost:3000"

type testApp struct {
	Server
	store   *inmemdb.KVStore
	emoRepo emotion.Repository
	capture *fakeCapture
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{TestMode: true, Env: "TEST"}
	conf.Server.FrontendOrigin = frontendOrigin
	conf.Server.DisableReqLogs = true

	// set up DB & repos
	db := inmemdb.Open()
	store := inmemdb.NewKVStore(db)
	emoRepo := inmemdb.NewEmotionRepository(db)

	// set up services
	emoSvc := emotion.NewService(emoRepo)
	deckSvc := flashcard.NewService(nil /* no generator */, store, emoSvc, nil)
	capture := &fakeCapture{status: sentiment.Status{State: sentiment.StateIdle}}

	validate, translator := shared.NewValidator()

	// set up server
	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     core.NopLogger(),
		Capture:    capture,
		Results:    store,
		DeckSvc:    deckSvc,
		EmotionSvc: emoSvc,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{Server: srv, store: store, emoRepo: emoRepo, capture: capture}
}

// fakeCapture records calls and serves a fixed status.
type fakeCapture struct {
	mu       sync.Mutex
	startErr error
	starts   int
	stops    int
	status   sentiment.Status
	subs     []chan sentiment.Status
}

func (c *fakeCapture) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	if c.startErr != nil {
		return c.startErr
	}
	c.status.Active = true
	c.status.State = sentiment.StateAcquiring
	return nil
}

func (c *fakeCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	c.status.Active = false
	c.status.State = sentiment.StateIdle
}

func (c *fakeCapture) Status() sentiment.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *fakeCapture) Subscribe() (<-chan sentiment.Status, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan sentiment.Status, 16)
	ch <- c.status
	c.subs = append(c.subs, ch)
	return ch, func() {}
}

func (c *fakeCapture) publish(st sentiment.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = st
	for _, ch := range c.subs {
		ch <- st
	}
}

func (c *fakeCapture) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func setSentiment(t *testing.T, app *testApp, value string) {
	t.Helper()
	if err := app.store.Set(context.Background(), sentiment.ResultKey, value, time.Hour); err != nil {
		t.Fatalf("setSentiment(): %v", err)
	}
}
