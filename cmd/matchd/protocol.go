/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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
	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/tools"
)

// Request is what clients send over WebSockets or MQTT.
//
// Op is one of "evaluate" (the default), "put", "get", "rem",
// "list", or "coverage".
type Request struct {
	// Id is copied to the Response.
	Id string `json:"id,omitempty"`

	Op string `json:"op,omitempty"`

	Statement string `json:"statement,omitempty"`

	// Subject is given to the statement for "evaluate".
	Subject interface{} `json:"subject,omitempty"`

	// Source is the new statement for "put".
	Source *core.StatementSource `json:"source,omitempty"`

	// Domain is the domain for "coverage".  See
	// tools.ParseDomain.
	Domain string `json:"domain,omitempty"`

	// ReplyTo is an optional MQTT topic for the Response.
	ReplyTo string `json:"replyTo,omitempty"`
}

// Response is what the service sends back.
type Response struct {
	Id string `json:"id,omitempty"`

	Matched  bool            `json:"matched"`
	Arm      string          `json:"arm,omitempty"`
	Bindings *match.Bindings `json:"bindings,omitempty"`
	Result   interface{}     `json:"result,omitempty"`

	Statements []string              `json:"statements,omitempty"`
	Source     *core.StatementSource `json:"source,omitempty"`
	Coverage   *tools.Coverage       `json:"coverage,omitempty"`

	Error string `json:"error,omitempty"`
}
