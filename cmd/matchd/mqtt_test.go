package main

import (
	"encoding/json"
	"testing"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in    string
		topic string
		qos   byte
	}{
		{"casematch/in", "casematch/in", 0},
		{"casematch/in:1", "casematch/in", 1},
		{" casematch/in:2 ", "casematch/in", 2},
		{"casematch/in:7", "casematch/in:7", 0},
		{"a:b", "a:b", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		topic, qos := parseTopic(tt.in)
		if topic != tt.topic || qos != tt.qos {
			t.Fatalf("%q: got (%q, %d)", tt.in, topic, qos)
		}
	}
}

func TestConsume(t *testing.T) {
	s, ctx := newTestService(t)

	c := &Couplings{
		OutTopic: "casematch/out:1",
		service:  s,
	}

	topic, qos, js := c.consume(ctx, "casematch/in", []byte(`{"statement":"sign","subject":0}`))
	if topic != "casematch/out" || qos != 1 {
		t.Fatal(topic, qos)
	}
	var r Response
	if err := json.Unmarshal(js, &r); err != nil {
		t.Fatal(err)
	}
	if !r.Matched || r.Arm != "zero" {
		t.Fatalf("%s", js)
	}

	topic, _, js = c.consume(ctx, "casematch/in", []byte(`{"statement":"sign","subject":1,"replyTo":"me"}`))
	if topic != "me" {
		t.Fatal(topic)
	}

	_, _, js = c.consume(ctx, "casematch/in", []byte(`tacos`))
	if err := json.Unmarshal(js, &r); err != nil || r.Error == "" {
		t.Fatalf("%s", js)
	}
}
