package logsource

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
)

// filterLogEventsAPI is the slice of the CloudWatch Logs client used here.
type filterLogEventsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// CloudWatchOptions tune pagination behavior. Zero values fall back to the
// package defaults.
type CloudWatchOptions struct {
	FilterPattern string
	MaxEntries    int
	MaxIterations int
	PageSize      int32
}

func (o CloudWatchOptions) withDefaults() CloudWatchOptions {
	if o.FilterPattern == "" {
		o.FilterPattern = DefaultFilterPattern
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}

// CloudWatchSource reads a log group through FilterLogEvents with
// NextToken pagination, bounded by MaxEntries and MaxIterations.
type CloudWatchSource struct {
	client   filterLogEventsAPI
	logGroup string
	opts     CloudWatchOptions
	log      *logger.Logger
}

// NewCloudWatchSource builds a source for one log group in one region,
// resolving credentials from the default AWS chain.
func NewCloudWatchSource(ctx context.Context, awsRegion, logGroup string, opts CloudWatchOptions, log *logger.Logger) (*CloudWatchSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for region %s: %w", awsRegion, err)
	}
	return NewCloudWatchSourceWithClient(cloudwatchlogs.NewFromConfig(cfg), logGroup, opts, log), nil
}

// NewCloudWatchSourceWithClient builds a source around an existing client.
func NewCloudWatchSourceWithClient(client filterLogEventsAPI, logGroup string, opts CloudWatchOptions, log *logger.Logger) *CloudWatchSource {
	if log == nil {
		log = logger.NewWithCallback("logsource", nil)
	}
	return &CloudWatchSource{
		client:   client,
		logGroup: logGroup,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// LogGroup returns the log group this source reads.
func (s *CloudWatchSource) LogGroup() string { return s.logGroup }

// FetchWindow pulls all matching events in the window, following NextToken
// until the token runs out or a cap is hit. On a mid-pagination failure the
// events fetched so far are returned alongside the error.
func (s *CloudWatchSource) FetchWindow(ctx context.Context, window Window) ([]classifier.LogEvent, error) {
	startMs := window.Start.UnixMilli()
	endMs := window.End.UnixMilli()
	s.log.Debug("collecting logs from %s, window %s", s.logGroup, window)

	var (
		events    []classifier.LogEvent
		nextToken *string
	)

	for iteration := 0; iteration < s.opts.MaxIterations; iteration++ {
		input := &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName:  &s.logGroup,
			StartTime:     &startMs,
			EndTime:       &endMs,
			FilterPattern: &s.opts.FilterPattern,
			Limit:         &s.opts.PageSize,
			NextToken:     nextToken,
		}

		out, err := s.client.FilterLogEvents(ctx, input)
		if err != nil {
			return events, fmt.Errorf("fetching logs from %s: %w", s.logGroup, err)
		}

		for _, ev := range out.Events {
			var ts, msg string
			if ev.Timestamp != nil {
				ts = time.UnixMilli(*ev.Timestamp).Format("2006-01-02T15:04:05")
			}
			if ev.Message != nil {
				msg = *ev.Message
			}
			events = append(events, classifier.LogEvent{Timestamp: ts, Message: msg})
		}

		nextToken = out.NextToken
		if nextToken == nil || len(events) >= s.opts.MaxEntries {
			break
		}
		if (iteration+1)%10 == 0 {
			s.log.Info("processed %d iterations, collected %d log entries", iteration+1, len(events))
		}
	}

	s.log.Debug("fetched %d error log entries from %s", len(events), s.logGroup)
	return events, nil
}
