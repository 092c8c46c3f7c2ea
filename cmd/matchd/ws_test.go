package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebSocketAPI(t *testing.T) {
	s, ctx := newTestService(t)

	ts := httptest.NewServer(s.Mux(ctx, nil))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/api"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	roundTrip := func(msg string) *Response {
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		_, js, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		var r Response
		if err = json.Unmarshal(js, &r); err != nil {
			t.Fatal(err)
		}
		return &r
	}

	r := roundTrip(`{"id":"a","statement":"sign","subject":-1}`)
	if r.Id != "a" || !r.Matched || r.Arm != "negative" {
		t.Fatalf("%#v", r)
	}
	if n, is := r.Result.(float64); !is || n != -1 {
		t.Fatalf("%#v", r.Result)
	}

	r = roundTrip(`{"id":"b","statement":"sign","subject":-5}`)
	if r.Id != "b" || r.Matched || r.Error != "" {
		t.Fatalf("%#v", r)
	}

	r = roundTrip(`not json`)
	if r.Error == "" {
		t.Fatalf("%#v", r)
	}
}

func TestStatementPages(t *testing.T) {
	s, ctx := newTestService(t)

	ts := httptest.NewServer(s.Mux(ctx, []string{"/static/x.css"}))
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		bs, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode, string(bs)
	}

	code, body := get("/statements/sign.html")
	if code != http.StatusOK || !strings.Contains(body, "<h1>sign</h1>") || !strings.Contains(body, "/static/x.css") {
		t.Fatal(code, body)
	}

	code, body = get("/statements/sign.json")
	if code != http.StatusOK || !strings.Contains(body, `"name":"sign"`) {
		t.Fatal(code, body)
	}

	code, body = get("/statements")
	if code != http.StatusOK || body != `["sign"]` {
		t.Fatal(code, body)
	}

	if code, _ = get("/statements/nope.html"); code != http.StatusNotFound {
		t.Fatal(code)
	}
	if code, _ = get("/statements/sign"); code != http.StatusNotFound {
		t.Fatal(code)
	}
}
