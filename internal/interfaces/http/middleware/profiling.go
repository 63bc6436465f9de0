package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelMethod   = "method"
	ProfilingLabelResource = "resource"
)

// Profiling attaches Pyroscope labels (method, route pattern and resource)
// to the goroutine serving each request, so CPU profiles can be filtered
// per endpoint. Paths with any of skipPrefixes are served unlabelled.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || hasAnyPrefix(c.Request.URL.Path, skipPrefixes) {
			c.Next()
			return
		}

		labels := []string{ProfilingLabelMethod, c.Request.Method, ProfilingLabelRoute, route}
		if resource := resourceFromRoute(route); resource != "" {
			labels = append(labels, ProfilingLabelResource, resource)
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// resourceFromRoute returns the first static segment after the API
// version, e.g. "/api/v1/roles/:id" yields "roles"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
