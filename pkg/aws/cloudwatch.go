package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client we use.
type CloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// LogStream is an io.Writer over one CloudWatch Logs stream; each Write
// becomes one log event. It is the sink tee'd into the zap logger.
type LogStream struct {
	api    CloudWatchLogsAPI
	group  string
	stream string
	mu     sync.Mutex
}

// NewLogStream ensures the log group exists and opens a stream
// named after the service and start time.
func NewLogStream(ctx context.Context, cfg aws.Config, logGroup, serviceName string) (*LogStream, error) {
	return openLogStream(ctx, cloudwatchlogs.NewFromConfig(cfg), logGroup, serviceName)
}

func openLogStream(ctx context.Context, api CloudWatchLogsAPI, group, serviceName string) (*LogStream, error) {
	ls := &LogStream{
		api:    api,
		group:  group,
		stream: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	}

	_, err := api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: aws.String(group)})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return nil, fmt.Errorf("create log group %s: %w", group, err)
	}

	_, err = api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(group),
		LogStreamName: aws.String(ls.stream),
	})
	if err != nil {
		return nil, fmt.Errorf("create log stream %s: %w", ls.stream, err)
	}
	return ls, nil
}

// Write never fails: a delivery error goes to stderr so logging keeps
// working while CloudWatch is unreachable.
func (ls *LogStream) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ls.mu.Lock()
	_, err := ls.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(ls.group),
		LogStreamName: aws.String(ls.stream),
		LogEvents: []types.InputLogEvent{{
			Message:   aws.String(string(p)),
			Timestamp: aws.Int64(time.Now().UnixMilli()),
		}},
	})
	ls.mu.Unlock()

	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch logs: %v\n", err)
	}
	return len(p), nil
}
