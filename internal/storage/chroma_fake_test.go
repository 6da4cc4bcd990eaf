package storage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/pdfindex/pkg/types"
)

const fakeChromaPrefix = "/api/v2/tenants/{tenant}/databases/{database}/collections"

// fakeChroma is an in-memory stand-in for the Chroma v2 REST API, scoped to
// the default tenant and database
type fakeChroma struct {
	mu     sync.Mutex
	byName map[string]*fakeCollection
	byID   map[string]*fakeCollection
	// legacy answers duplicates the way pre-0.5 servers do
	legacy bool
	// lastAdd holds the body of the most recent add request
	lastAdd map[string]json.RawMessage
	// requests lists "METHOD /path" for every call received
	requests []string
}

type fakeCollection struct {
	id         string
	name       string
	dimension  int
	ids        []string
	documents  []string
	metadatas  []types.Metadata
	embeddings [][]float32
}

func newFakeChroma(t *testing.T) (*fakeChroma, *httptest.Server) {
	t.Helper()
	f := &fakeChroma{byName: map[string]*fakeCollection{}, byID: map[string]*fakeCollection{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{"nanosecond heartbeat": 1})
	})
	mux.HandleFunc("GET /api/v2/pre-flight-checks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"max_batch_size": 1024, "supports_base64_encoding": false})
	})
	mux.HandleFunc("GET /api/v2/auth/identity", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": "", "tenant": "default_tenant", "databases": []string{"default_database"},
		})
	})
	mux.HandleFunc("GET /api/v2/tenants/{tenant}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": r.PathValue("tenant")})
	})
	mux.HandleFunc("GET /api/v2/tenants/{tenant}/databases/{database}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"id": uuid.NewString(), "name": r.PathValue("database"), "tenant": r.PathValue("tenant"),
		})
	})
	mux.HandleFunc("POST "+fakeChromaPrefix, f.create)
	mux.HandleFunc("GET "+fakeChromaPrefix, f.list)
	mux.HandleFunc("GET "+fakeChromaPrefix+"/{name}", f.get)
	mux.HandleFunc("DELETE "+fakeChromaPrefix+"/{name}", f.delete)
	mux.HandleFunc("POST "+fakeChromaPrefix+"/{id}/add", f.add)
	mux.HandleFunc("GET "+fakeChromaPrefix+"/{id}/count", f.count)
	mux.HandleFunc("POST "+fakeChromaPrefix+"/{id}/get", f.records)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

// writeJSON writes v without a trailing newline, as the server does
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func chromaError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": msg})
}

func (c *fakeCollection) model() map[string]any {
	return map[string]any{
		"id":                 c.id,
		"name":               c.name,
		"metadata":           nil,
		"dimension":          nil,
		"tenant":             "default_tenant",
		"database":           "default_database",
		"configuration_json": map[string]any{},
		"log_position":       0,
		"version":            0,
	}
}

func (f *fakeChroma) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		GetOrCreate bool   `json:"get_or_create"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		chromaError(w, http.StatusBadRequest, "InvalidArgumentError", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byName[req.Name]; ok {
		if req.GetOrCreate {
			writeJSON(w, http.StatusOK, c.model())
			return
		}
		msg := fmt.Sprintf("Collection [%s] already exists", req.Name)
		if f.legacy {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "UniqueConstraintError('" + msg + "')"})
			return
		}
		chromaError(w, http.StatusConflict, "UniqueConstraintError", msg)
		return
	}

	c := &fakeCollection{id: uuid.NewString(), name: req.Name}
	f.byName[c.name] = c
	f.byID[c.id] = c
	writeJSON(w, http.StatusOK, c.model())
}

func (f *fakeChroma) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []map[string]any{}
	for _, c := range f.byName {
		out = append(out, c.model())
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeChroma) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byName[r.PathValue("name")]
	if !ok {
		chromaError(w, http.StatusNotFound, "NotFoundError",
			fmt.Sprintf("Collection [%s] does not exist", r.PathValue("name")))
		return
	}
	writeJSON(w, http.StatusOK, c.model())
}

func (f *fakeChroma) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byName[r.PathValue("name")]
	if !ok {
		chromaError(w, http.StatusNotFound, "NotFoundError",
			fmt.Sprintf("Collection [%s] does not exist", r.PathValue("name")))
		return
	}
	delete(f.byName, c.name)
	delete(f.byID, c.id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (f *fakeChroma) collection(w http.ResponseWriter, r *http.Request) (*fakeCollection, bool) {
	c, ok := f.byID[r.PathValue("id")]
	if !ok {
		chromaError(w, http.StatusNotFound, "NotFoundError",
			fmt.Sprintf("Collection [%s] does not exist", r.PathValue("id")))
	}
	return c, ok
}

func (f *fakeChroma) add(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		chromaError(w, http.StatusBadRequest, "InvalidArgumentError", err.Error())
		return
	}
	var req struct {
		IDs        []string         `json:"ids"`
		Documents  []string         `json:"documents"`
		Metadatas  []types.Metadata `json:"metadatas"`
		Embeddings [][]float32      `json:"embeddings"`
	}
	body, _ := json.Marshal(raw)
	if err := json.Unmarshal(body, &req); err != nil {
		chromaError(w, http.StatusBadRequest, "InvalidArgumentError", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAdd = raw

	c, ok := f.collection(w, r)
	if !ok {
		return
	}
	for _, emb := range req.Embeddings {
		want := c.dimension
		if want == 0 {
			want = len(req.Embeddings[0])
		}
		if len(emb) != want {
			chromaError(w, http.StatusBadRequest, "InvalidArgumentError",
				fmt.Sprintf("Collection expecting embedding with dimension of %d, got %d", want, len(emb)))
			return
		}
	}
	if len(req.Embeddings) > 0 {
		c.dimension = len(req.Embeddings[0])
	}
	c.ids = append(c.ids, req.IDs...)
	c.documents = append(c.documents, req.Documents...)
	c.metadatas = append(c.metadatas, req.Metadatas...)
	c.embeddings = append(c.embeddings, req.Embeddings...)
	writeJSON(w, http.StatusCreated, map[string]any{})
}

func (f *fakeChroma) count(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collection(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(strconv.Itoa(len(c.ids))))
}

func (f *fakeChroma) records(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ids":        append([]string{}, c.ids...),
		"documents":  append([]string{}, c.documents...),
		"metadatas":  append([]types.Metadata{}, c.metadatas...),
		"embeddings": append([][]float32{}, c.embeddings...),
		"uris":       nil,
		"include":    []string{"documents", "metadatas", "embeddings"},
	})
}
