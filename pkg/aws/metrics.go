package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names published by the storefront.
const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	MetricCheckoutSessionsCreated   = "CheckoutSessionsCreated"
	MetricCheckoutSessionsFailed    = "CheckoutSessionsFailed"
	MetricCheckoutSessionsCompleted = "CheckoutSessionsCompleted"
	MetricPaymentSucceeded          = "PaymentSucceeded"
	MetricWebhookVerificationFailed = "WebhookVerificationFailed"
	MetricWebhookEventsUnhandled    = "WebhookEventsUnhandled"
)

// CloudWatchAPI is the subset of the CloudWatch client we use.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Datum is a single data point waiting to be published.
type Datum struct {
	Name  string
	Value float64
	Unit  types.StandardUnit
}

// Count is a datum incrementing a counter by one.
func Count(name string) Datum {
	return Datum{Name: name, Value: 1, Unit: types.StandardUnitCount}
}

// Latency is a datum recording d in milliseconds.
func Latency(name string, d time.Duration) Datum {
	return Datum{Name: name, Value: float64(d.Milliseconds()), Unit: types.StandardUnitMilliseconds}
}

// MetricsClient publishes data points to one CloudWatch namespace. A nil or
// disabled client accepts every call and sends nothing.
type MetricsClient struct {
	api       CloudWatchAPI
	namespace string
	enabled   bool
}

func NewMetricsClient(cfg aws.Config, namespace string, enabled bool) *MetricsClient {
	return NewMetricsClientWithAPI(cloudwatch.NewFromConfig(cfg), namespace, enabled)
}

func NewMetricsClientWithAPI(api CloudWatchAPI, namespace string, enabled bool) *MetricsClient {
	if namespace == "" {
		namespace = "Sassclub"
	}
	return &MetricsClient{api: api, namespace: namespace, enabled: enabled}
}

func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

// Put publishes data sharing one set of dimensions in a single request.
func (m *MetricsClient) Put(ctx context.Context, dimensions map[string]string, data ...Datum) error {
	if !m.IsEnabled() || len(data) == 0 {
		return nil
	}

	dims := toDimensions(dimensions)
	now := time.Now()
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: make([]types.MetricDatum, 0, len(data)),
	}
	for _, d := range data {
		input.MetricData = append(input.MetricData, types.MetricDatum{
			MetricName: aws.String(d.Name),
			Value:      aws.Float64(d.Value),
			Unit:       d.Unit,
			Timestamp:  aws.Time(now),
			Dimensions: dims,
		})
	}

	if _, err := m.api.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put %d metrics to %s: %w", len(data), m.namespace, err)
	}
	return nil
}

// toDimensions sorts by name so identical maps yield identical series.
func toDimensions(in map[string]string) []types.Dimension {
	names := make([]string, 0, len(in))
	for k := range in {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]types.Dimension, 0, len(names))
	for _, k := range names {
		out = append(out, types.Dimension{Name: aws.String(k), Value: aws.String(in[k])})
	}
	return out
}
