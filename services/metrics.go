package services

import (
	"context"
	"time"

	aws_pkg "github.com/MissDaze/Sassclub/pkg/aws"

	"go.uber.org/zap"
)

// Metrics records business counters. Count must not block the caller.
type Metrics interface {
	Count(name string, dimensions map[string]string)
}

// NopMetrics drops every data point.
type NopMetrics struct{}

func (NopMetrics) Count(string, map[string]string) {}

// CloudWatchMetrics sends counters to CloudWatch in the background.
type CloudWatchMetrics struct {
	client *aws_pkg.MetricsClient
	logger *zap.Logger
}

func NewCloudWatchMetrics(client *aws_pkg.MetricsClient, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{client: client, logger: logger}
}

func (m *CloudWatchMetrics) Count(name string, dimensions map[string]string) {
	if !m.client.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.client.Put(ctx, dimensions, aws_pkg.Count(name)); err != nil {
			m.logger.Debug("Failed to record metric", zap.String("metric", name), zap.Error(err))
		}
	}()
}
