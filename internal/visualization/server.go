package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>hyperscore: {{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Stats.Nodes}} nodes, {{.Stats.FunctionalityEdges}} functionality edges, {{.Stats.ValueEdges}} value edges, {{.Stats.Dependencies}} dependencies</p>
{{if .HasResult}}<p>Meta-score: {{printf "%.4f" .MetaScore}}</p>{{end}}
<ul>
<li><a href="/graph.json">graph.json</a></li>
<li><a href="/graph.dot">graph.dot</a></li>
</ul>
<table>
<tr><th>Node</th><th>Domain</th><th>Type</th></tr>
{{range .Nodes}}<tr><td><a href="/api/node?id={{.ID}}">{{.ID}}</a></td><td style="background:{{.Color}}">{{.Domain}}</td><td>{{.Type}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// Server serves a scored network over HTTP as JSON, DOT and a small index page.
type Server struct {
	network    *graph.Network
	result     *simulation.Result
	enrichment *EnrichmentData
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new graph visualization server. result and enrichment may be nil.
func NewServer(net *graph.Network, result *simulation.Result, enrichment *EnrichmentData) *Server {
	return &Server{
		network:    net,
		result:     result,
		enrichment: enrichment,
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/graph.json", s.handleJSON)
	mux.HandleFunc("/graph.dot", s.handleDOT)
	mux.HandleFunc("/api/node", s.handleNode)
	return mux
}

// ListenAndServe starts the HTTP server on addr and blocks until the context
// is cancelled. An empty addr lets the OS pick a free localhost port.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = "localhost:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Title     string
		Stats     graph.Stats
		HasResult bool
		MetaScore float64
		Nodes     []NodeJSON
	}{
		Title: "network",
		Stats: s.network.Stats(),
		Nodes: RenderJSON(s.network, nil, nil).Nodes,
	}
	if s.result != nil {
		data.Title = s.result.Scenario
		data.HasResult = true
		data.MetaScore = s.result.MetaScore
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, RenderJSON(s.network, s.result, s.enrichment))
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	fmt.Fprint(w, RenderDOT(s.network, s.result))
}

// handleNode returns the final state of a single node.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing 'id' query parameter", http.StatusBadRequest)
		return
	}
	if _, ok := s.network.Node(id); !ok {
		http.Error(w, "node not found: "+id, http.StatusNotFound)
		return
	}

	var state simulation.NodeState
	if s.result != nil {
		state = s.result.Nodes[id]
	} else {
		state = simulation.Snapshot(s.network)[id]
	}
	writeJSON(w, state)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
