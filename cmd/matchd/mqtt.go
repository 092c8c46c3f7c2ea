/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Comcast/casematch/value"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Couplings bridges an MQTT broker to the Service.
//
// Requests arrive on the subscription topics.  Responses go to the
// Request's ReplyTo topic or else to OutTopic.
type Couplings struct {
	Client    mqtt.Client
	Quiesce   uint
	SubTopics string
	OutTopic  string

	service *Service
}

// consume processes one incoming payload and returns the response
// topic and payload.
func (c *Couplings) consume(ctx context.Context, topic string, payload []byte) (string, byte, []byte) {
	var resp *Response
	var req Request
	if err := value.DecodeJSON(payload, &req); err != nil {
		log.Printf("Couldn't JSON-parse payload: %s", payload)
		resp = &Response{
			Error: fmt.Sprintf("can't parse: %v", err),
		}
	} else {
		resp = c.service.Process(ctx, &req)
	}

	out, qos := parseTopic(c.OutTopic)
	if req.ReplyTo != "" {
		out, qos = parseTopic(req.ReplyTo)
	}

	js, err := json.Marshal(resp)
	if err != nil {
		js = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return out, qos, js
}

// inHandler is a Paho publish handler, which is used to handle
// messages send to us from the MQTT broker due to our subscriptions.
func (c *Couplings) inHandler(ctx context.Context, client mqtt.Client, msg mqtt.Message) {
	c.service.logf("incoming: %s %s", msg.Topic(), msg.Payload())
	topic, qos, js := c.consume(ctx, msg.Topic(), msg.Payload())
	token := client.Publish(topic, qos, false, js)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("Publish error: %s", err)
		return
	}
	c.service.logf("Published to %s", topic)
}

// Start creates the MQTT session and subscribes.
func (c *Couplings) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	handler := func(client mqtt.Client, msg mqtt.Message) {
		c.inHandler(ctx, client, msg)
	}

	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, handler); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}
	log.Printf("Couplings started")

	return nil
}

// Stop terminates the MQTT session.
func (c *Couplings) Stop(context.Context) {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Quiesce)
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0
	}
	qos, err := strconv.ParseUint(s[i+1:], 10, 8)
	if err != nil || 2 < qos {
		return s, 0
	}
	return s[:i], byte(qos)
}
