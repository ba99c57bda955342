package middleware

import (
	"context"
	"strconv"
	"time"

	aws_pkg "github.com/MissDaze/Sassclub/pkg/aws"

	"github.com/gin-gonic/gin"
)

// MetricsRecorder is implemented by aws_pkg.MetricsClient.
type MetricsRecorder interface {
	IsEnabled() bool
	Put(ctx context.Context, dimensions map[string]string, data ...aws_pkg.Datum) error
}

// MetricsMiddleware publishes request count, latency and error class for
// every request in one background call.
func MetricsMiddleware(recorder MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || !recorder.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		data := append(
			[]aws_pkg.Datum{
				aws_pkg.Count(aws_pkg.MetricHTTPRequests),
				aws_pkg.Latency(aws_pkg.MetricHTTPLatency, time.Since(start)),
			},
			errorData(status)...,
		)

		// The static catch-all has no route template; collapse it to keep
		// dimension cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "static"
		}
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  statusClass(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = recorder.Put(ctx, dims, data...)
		}()
	}
}

func errorData(status int) []aws_pkg.Datum {
	switch {
	case status >= 500:
		return []aws_pkg.Datum{aws_pkg.Count(aws_pkg.MetricHTTPErrors), aws_pkg.Count(aws_pkg.MetricHTTP5xx)}
	case status >= 400:
		return []aws_pkg.Datum{aws_pkg.Count(aws_pkg.MetricHTTPErrors), aws_pkg.Count(aws_pkg.MetricHTTP4xx)}
	}
	return nil
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
