// Package devserver runs an in-memory stand-in for the hosted REST
// backend. It speaks the same /rest/v1 dialect the client uses (eq.
// filters, on_conflict upserts, Prefer headers) so the full sync loop can
// be exercised without an account or network access.
package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// record is a schemaless row; the client defines the shapes.
type record = map[string]any

// Server holds all state in memory. Safe for concurrent use.
type Server struct {
	mu     sync.RWMutex
	tables map[string]map[string]record
}

// New creates an empty server.
func New() *Server {
	return &Server{
		tables: make(map[string]map[string]record),
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/rest/v1/{table}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Patch("/", s.handleUpdate)
		r.Delete("/", s.handleDelete)
	})

	return r
}

// Seed inserts rows directly, bypassing HTTP. Test and demo helper.
func (s *Server) Seed(table string, rows ...record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			continue
		}
		s.table(table)[id] = row
	}
}

// Count returns the number of rows in a table.
func (s *Server) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// table returns the named table, creating it on first use. Callers hold
// the lock.
func (s *Server) table(name string) map[string]record {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[string]record)
		s.tables[name] = t
	}
	return t
}

// filters extracts eq. query parameters: ?id=eq.abc&user_id=eq.u1.
func filters(r *http.Request) map[string]string {
	result := make(map[string]string)
	for key, values := range r.URL.Query() {
		if key == "select" || key == "on_conflict" || len(values) == 0 {
			continue
		}
		if value, ok := strings.CutPrefix(values[0], "eq."); ok {
			result[key] = value
		}
	}
	return result
}

func matches(row record, conditions map[string]string) bool {
	for column, want := range conditions {
		if fmt.Sprintf("%v", row[column]) != want {
			return false
		}
	}
	return true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	conditions := filters(r)

	s.mu.RLock()
	rows := make([]record, 0)
	for _, row := range s.tables[tableName] {
		if matches(row, conditions) {
			rows = append(rows, row)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")

	rows, err := decodeRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// PostgREST upserts when on_conflict names the natural key and the
	// Prefer header asks for merge-duplicates.
	var conflictColumns []string
	if strings.Contains(r.Header.Get("Prefer"), "resolution=merge-duplicates") {
		if oc := r.URL.Query().Get("on_conflict"); oc != "" {
			conflictColumns = strings.Split(oc, ",")
		}
	}

	s.mu.Lock()
	table := s.table(tableName)
	for _, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "row has no id")
			return
		}
		if existingID := findConflict(table, row, conflictColumns); existingID != "" {
			existing := table[existingID]
			for key, value := range row {
				if key == "id" {
					continue
				}
				existing[key] = value
			}
			slog.Debug("merged row", "table", tableName, "id", existingID)
			continue
		}
		if _, dup := table[id]; dup && len(conflictColumns) == 0 {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "duplicate key")
			return
		}
		table[id] = row
	}
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

// findConflict returns the id of the row sharing the conflict columns, or
// "".
func findConflict(table map[string]record, row record, columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	for existingID, existing := range table {
		same := true
		for _, column := range columns {
			if fmt.Sprintf("%v", existing[column]) != fmt.Sprintf("%v", row[column]) {
				same = false
				break
			}
		}
		if same {
			return existingID
		}
	}
	return ""
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	conditions := filters(r)
	if len(conditions) == 0 {
		writeError(w, http.StatusBadRequest, "refusing unfiltered update")
		return
	}

	var patch record
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	updated := 0
	for _, row := range s.tables[tableName] {
		if !matches(row, conditions) {
			continue
		}
		for key, value := range patch {
			if key == "id" {
				continue
			}
			row[key] = value
		}
		updated++
	}
	s.mu.Unlock()

	if updated == 0 {
		writeError(w, http.StatusNotFound, "no rows matched")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	conditions := filters(r)
	if len(conditions) == 0 {
		writeError(w, http.StatusBadRequest, "refusing unfiltered delete")
		return
	}

	s.mu.Lock()
	table := s.tables[tableName]
	var doomed []string
	for id, row := range table {
		if matches(row, conditions) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		delete(table, id)
	}
	s.mu.Unlock()

	// Absent rows 404 so clients get to prove their deletes are
	// idempotent.
	if len(doomed) == 0 {
		writeError(w, http.StatusNotFound, "no rows matched")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeRows accepts a single JSON object or an array of them.
func decodeRows(r *http.Request) ([]record, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body")
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var rows []record
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("invalid JSON array")
		}
		return rows, nil
	}

	var row record
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("invalid JSON object")
	}
	return []record{row}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
