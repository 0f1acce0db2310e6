// Package debugsrv serves live job introspection over HTTP, the way
// purpleidea-mgmt/engine/resources/http_server_ui.go builds a gin
// router for its own form UI: gin.New() plus gin.Logger()/
// gin.Recovery() middleware, handlers that answer with gin.H JSON.
// Here the payload is a snapshot of every router currently tracked by
// a Registry instead of a resource graph.
package debugsrv

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flowgraph/dagflow/router"
)

// JobInfo is the public shape of one tracked job.
type JobInfo struct {
	ID        string `json:"id"`
	Running   int    `json:"running"`
	Quiescent bool   `json:"quiescent"`
	Killed    bool   `json:"killed"`
}

// Registry tracks every router currently executing a job, so a single
// long-lived HTTP server can answer introspection queries about all of
// them. Engine façade functions Track a router at job start and
// Untrack it once the job returns.
type Registry struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*router.Router
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*router.Router)}
}

// Track registers r under its job ID.
func (reg *Registry) Track(r *router.Router) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.jobs[r.ID] = r
}

// Untrack removes r, normally called once its job has returned.
func (reg *Registry) Untrack(r *router.Router) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.jobs, r.ID)
}

func (reg *Registry) snapshot() []JobInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	infos := make([]JobInfo, 0, len(reg.jobs))
	for id, r := range reg.jobs {
		running, quiescent, killed := r.Snapshot()
		infos = append(infos, JobInfo{ID: id.String(), Running: running, Quiescent: quiescent, Killed: killed})
	}
	return infos
}

func (reg *Registry) lookup(id string) (JobInfo, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return JobInfo{}, false
	}
	reg.mu.RLock()
	r, ok := reg.jobs[parsed]
	reg.mu.RUnlock()
	if !ok {
		return JobInfo{}, false
	}
	running, quiescent, killed := r.Snapshot()
	return JobInfo{ID: id, Running: running, Quiescent: quiescent, Killed: killed}, true
}

// New builds a gin.Engine exposing reg: GET /jobs lists every live
// job, GET /jobs/:id reports one.
func New(reg *Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Logger(), gin.Recovery())

	e.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": reg.snapshot()})
	})

	e.GET("/jobs/:id", func(c *gin.Context) {
		info, ok := reg.lookup(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusOK, info)
	})

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return e
}

// Serve runs e on addr in a background goroutine, mirroring the
// teacher's prometheus.Prometheus.Start fire-and-forget ListenAndServe.
func Serve(e *gin.Engine, addr string) {
	go http.ListenAndServe(addr, e)
}
