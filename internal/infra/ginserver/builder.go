package ginserver

import (
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// Builder assembles a Server fluently.
type Builder struct {
	cfg    Config
	log    infralogger.Logger
	routes func(*gin.Engine)
	checks map[string]HealthChecker
}

// NewServerBuilder starts a builder for serviceName listening on port.
func NewServerBuilder(serviceName string, port int) *Builder {
	return &Builder{
		cfg:    Config{ServiceName: serviceName, Port: port},
		checks: make(map[string]HealthChecker),
	}
}

func (b *Builder) WithLogger(log infralogger.Logger) *Builder { b.log = log; return b }
func (b *Builder) WithDebug(debug bool) *Builder              { b.cfg.Debug = debug; return b }
func (b *Builder) WithVersion(v string) *Builder              { b.cfg.ServiceVersion = v; return b }
func (b *Builder) WithCORSOrigins(o []string) *Builder        { b.cfg.AllowedOrigins = o; return b }
func (b *Builder) WithRoutes(fn func(*gin.Engine)) *Builder   { b.routes = fn; return b }

// WithTimeouts sets read, write and idle timeouts.
func (b *Builder) WithTimeouts(read, write, idle time.Duration) *Builder {
	b.cfg.ReadTimeout, b.cfg.WriteTimeout, b.cfg.IdleTimeout = read, write, idle
	return b
}

// WithHealthCheck registers a named dependency check reported by GET /health.
func (b *Builder) WithHealthCheck(name string, check HealthChecker) *Builder {
	b.checks[name] = check
	return b
}

// Build creates the server. Health routes are registered before service routes.
func (b *Builder) Build() *Server {
	if b.log == nil {
		b.log = infralogger.Must(infralogger.Config{Development: b.cfg.Debug})
	}
	return NewServer(b.cfg, b.log, func(router *gin.Engine) {
		RegisterHealthRoutes(router, b.cfg.ServiceName, b.cfg.ServiceVersion, b.checks)
		if b.routes != nil {
			b.routes(router)
		}
	})
}
