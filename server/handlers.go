package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

type createRequest struct {
	AARC   json.RawMessage `json:"aarc"`
	Config json.RawMessage `json:"config"`
}

type getRequest struct {
	Key string `json:"key"`
}

// unwrapJSON accepts a value that is either a nested JSON document or a
// string containing one, and returns the document.
func unwrapJSON(raw json.RawMessage) (json.RawMessage, error) {
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		var probe interface{}
		if err := json.Unmarshal([]byte(inner), &probe); err != nil {
			return nil, err
		}
		return json.RawMessage(inner), nil
	}
	return raw, nil
}

// Handler returns the HTTP surface: POST /create, POST /get, with permissive
// CORS and a 204 answer to every preflight.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/create", s.handleCreate)
	mux.HandleFunc("/get", s.handleGet)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// ListenAndServe serves the task API on the given address.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("task server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Can't read request body.", http.StatusBadRequest)
		return
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.AARC) == 0 {
		http.Error(w, "Invalid request: missing 'aarc'.", http.StatusBadRequest)
		return
	}

	aarc, err := unwrapJSON(req.AARC)
	if err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	config := req.Config
	if len(config) > 0 {
		config, err = unwrapJSON(config)
		if err != nil {
			http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	task := s.Enqueue(aarc, config)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":    task.Key,
		"status": StatusPending.String(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
		return
	}
	var req getRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "Invalid request: missing 'key'.", http.StatusBadRequest)
		return
	}

	view, ok := s.Lookup(req.Key)
	if !ok {
		http.Error(w, "Task not found.", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"key":    view.Key,
		"status": view.Status.String(),
	}
	switch view.Status {
	case StatusCompleted:
		resp["result"] = view.Result
	case StatusFailed, StatusTimeout:
		resp["error"] = view.ErrMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
