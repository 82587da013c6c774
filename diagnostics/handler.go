package diagnostics

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/appkit/component"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/errors"
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/util"
	"github.com/kbukum/appkit/version"
)

const defaultPrefix = "/debug"

// Option configures the diagnostics routes.
type Option func(*options)

type options struct {
	prefix      string
	serviceName string
	exposedKeys []string
	log         *logger.Logger
}

// WithPrefix mounts the routes under prefix instead of /debug.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithServiceName sets the service name reported by the health route.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithExposedKeys limits the environment route to the values of keys. Every
// key is still listed. Without it all values are shown, masked.
func WithExposedKeys(keys ...string) Option {
	return func(o *options) { o.exposedKeys = append(o.exposedKeys, keys...) }
}

// WithLogger sets the logger for recovered panics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func resolveOptions(opts []Option) *options {
	o := &options{prefix: defaultPrefix}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("diagnostics")
	}
	return o
}

// Handler returns a gin engine serving the diagnostics routes for c. The
// gin mode is left to the host.
func Handler(c *di.Container, opts ...Option) http.Handler {
	o := resolveOptions(opts)
	engine := gin.New()
	engine.Use(recovery(o.log))
	mount(engine, c, o)
	return engine
}

// Mount registers the diagnostics routes on an existing router.
func Mount(r gin.IRouter, c *di.Container, opts ...Option) {
	mount(r, c, resolveOptions(opts))
}

func mount(r gin.IRouter, c *di.Container, o *options) {
	g := r.Group(o.prefix)
	g.GET("/container", containerHandler(c))
	g.GET("/environment", environmentHandler(c, o.exposedKeys))
	g.GET("/health", healthHandler(c, o.serviceName))
	g.GET("/version", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, version.Get()) })
}

func containerHandler(c *di.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		regs := c.Registrations()
		ctx.JSON(http.StatusOK, gin.H{
			"count":         len(regs),
			"registrations": regs,
		})
	}
}

// environmentHandler reports the environment held by the container. It
// never resolves, so nothing is constructed on its behalf. Values are masked
// by key and by URL credentials; with exposed set only those keys carry a
// value.
func environmentHandler(c *di.Container, exposed []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		env := heldEnvironment(c)
		if env == nil {
			respondWithError(ctx, errors.New(errors.KindUnknown, errors.ErrCodeNotFound, "no environment registered"))
			return
		}

		values := make(map[string]string, env.Len())
		for k, v := range env.All() {
			if len(exposed) > 0 && !slices.Contains(exposed, k) {
				continue
			}
			values[k] = util.MaskValue(k, v)
		}
		ctx.JSON(http.StatusOK, gin.H{
			"flavor": env.Flavor().String(),
			"count":  env.Len(),
			"keys":   env.Keys(),
			"values": values,
		})
	}
}

func healthHandler(c *di.Container, serviceName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reports := []component.Health{}
		c.Instances(func(_ di.RegistrationInfo, instance any) bool {
			if hc, ok := instance.(component.HealthChecker); ok {
				reports = append(reports, hc.Health(ctx.Request.Context()))
			}
			return true
		})

		status := component.Overall(reports)
		httpStatus := http.StatusOK
		if status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		ctx.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": reports,
		})
	}
}

func heldEnvironment(c *di.Container) *config.Environment {
	var env *config.Environment
	c.Instances(func(_ di.RegistrationInfo, instance any) bool {
		if e, ok := instance.(*config.Environment); ok && e != nil {
			env = e
			return false
		}
		return true
	})
	return env
}

func respondWithError(ctx *gin.Context, err error) {
	appErr := errors.Wrap(err)
	status := http.StatusInternalServerError
	if appErr.Code == errors.ErrCodeNotFound {
		status = http.StatusNotFound
	}
	ctx.JSON(status, appErr.ToResponse())
}

func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
					"path", ctx.Request.URL.Path,
				))
				ctx.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.Unknown("internal server error").ToResponse())
			}
		}()
		ctx.Next()
	}
}
