package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Comcast/casematch/tools"
)

// Mux routes
//
//	/ws/api: the WebSocket API
//	/statements: the list of statement names
//	/statements/NAME.html: a statement rendered as HTML
//	/statements/NAME.json: a statement's source
func (s *Service) Mux(ctx context.Context, cssFiles []string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/api", s.WebSocketHandler(ctx))

	mux.HandleFunc("/statements", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Names())
	})

	mux.HandleFunc("/statements/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/statements/")
		switch {
		case strings.HasSuffix(name, ".html"):
			st, err := s.Statement(strings.TrimSuffix(name, ".html"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err = tools.RenderStatementPage(st, w, cssFiles); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case strings.HasSuffix(name, ".json"):
			src, err := s.Storage.GetStatement(r.Context(), s.Library, strings.TrimSuffix(name, ".json"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			writeJSON(w, src)
		default:
			http.NotFound(w, r)
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
