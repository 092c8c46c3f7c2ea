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

// Package main is a service that evaluates subjects against a
// library of statements.
//
// Statements live in a BoltDB file (or just in memory).  Clients
// talk to the service over WebSockets at /ws/api or, optionally, via
// an MQTT broker.
//
//	matchd -db statements.db -load sign.yaml,height.yaml -mqtt tcp://localhost -t casematch/in
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Comcast/casematch/interpreters"
	"github.com/Comcast/casematch/storage"
	"github.com/Comcast/casematch/storage/bolt"
	"github.com/Comcast/casematch/tools"
	"github.com/Comcast/casematch/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {

	var (
		dbFile  = flag.String("db", "", "BoltDB filename (in-memory storage if empty)")
		lib     = flag.String("lib", "default", "statement library name")
		load    = flag.String("load", "", "comma-separated statement files to put in the library")
		listen  = flag.String("listen", ":8080", "HTTP listen address")
		css     = flag.String("css", "", "comma-separated CSS files for statement pages")
		timeout = flag.Duration("timeout", 10*time.Second, "timeout for each request")
		verbose = flag.Bool("v", false, "verbosity")

		broker    = flag.String("mqtt", "", "MQTT broker (no MQTT if empty)")
		port      = flag.Int("p", 1883, "MQTT broker port")
		clientId  = flag.String("i", "", "MQTT client id")
		keepAlive = flag.Int("k", 600, "MQTT keep-alive in seconds")
		userName  = flag.String("u", "", "MQTT username")
		password  = flag.String("P", "", "MQTT password")
		reconnect = flag.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean     = flag.Bool("c", true, "Clean session")
		quiesce   = flag.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")
		insecure  = flag.Bool("insecure", false, "Skip broker cert checking")
		caFile    = flag.String("cafile", "", "Optional CA cert filename")
		subTopics = flag.String("t", "casematch/in", "MQTT subscription topic(s)")
		outTopic  = flag.String("out-topic", "casematch/out", "Default MQTT response topic")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st storage.Storage
	if *dbFile == "" {
		st = storage.NewMemStorage()
	} else {
		b, err := bolt.NewStorage(*dbFile)
		if err != nil {
			log.Fatal(err)
		}
		b.Debug = *verbose
		st = b
	}
	if err := st.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer st.Close(ctx)

	s := NewService(st, *lib, interpreters.Standard())
	s.Timeout = *timeout
	s.Verbose = *verbose

	if err := s.Load(ctx); err != nil {
		log.Fatal(err)
	}

	for _, filename := range strings.Split(*load, ",") {
		if filename = strings.TrimSpace(filename); filename == "" {
			continue
		}
		src, err := tools.ReadStatementFile(filename)
		if err != nil {
			log.Fatal(err)
		}
		if err = s.Put(ctx, src); err != nil {
			log.Fatalf("%s: %s", filename, err)
		}
		log.Printf("loaded %s from %s", src.Name, filename)
	}

	if *broker != "" {
		mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

		opts := mqtt.NewClientOptions()
		if *port != 0 {
			*broker = fmt.Sprintf("%s:%d", *broker, *port)
		}
		log.Printf("broker: %s", *broker)
		opts.AddBroker(*broker)
		opts.SetClientID(*clientId)
		opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))
		opts.SetPingTimeout(10 * time.Second)
		opts.Username = *userName
		opts.Password = *password
		opts.AutoReconnect = *reconnect
		opts.CleanSession = *clean

		rootCAs, _ := x509.SystemCertPool()
		if rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}
		if *caFile != "" {
			certs, err := os.ReadFile(*caFile)
			if err != nil {
				log.Fatalf("couldn't read '%s': %s", *caFile, err)
			}
			if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
				log.Println("No certs appended, using system certs only")
			}
		}
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: *insecure,
			RootCAs:            rootCAs,
		})

		opts.OnConnectionLost = func(client mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}

		c := &Couplings{
			Client:    mqtt.NewClient(opts),
			Quiesce:   uint(*quiesce),
			SubTopics: *subTopics,
			OutTopic:  *outTopic,
			service:   s,
		}
		if err := c.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer c.Stop(ctx)
	}

	var cssFiles []string
	if *css != "" {
		cssFiles = strings.Split(*css, ",")
	}

	log.Printf("listening on %s", *listen)
	if err := http.ListenAndServe(*listen, s.Mux(ctx, cssFiles)); err != nil {
		log.Fatal(err)
	}
}
