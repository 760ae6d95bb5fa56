package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics serves the Prometheus registry in text exposition format.
// GET /api/metrics
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
}
