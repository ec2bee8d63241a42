package metricsource

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logsource"
)

// cloudWatchAPI is the slice of the CloudWatch client used here.
type cloudWatchAPI interface {
	GetDashboard(ctx context.Context, params *cloudwatch.GetDashboardInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetDashboardOutput, error)
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// dashboardBody is the subset of the dashboard JSON we read. Each metric
// definition is a flat array of namespace, metric name and dimension
// key/value pairs; trailing option objects are ignored.
type dashboardBody struct {
	Widgets []struct {
		Properties struct {
			Title   string  `json:"title"`
			Metrics [][]any `json:"metrics"`
		} `json:"properties"`
	} `json:"widgets"`
}

// CloudWatchSource resolves a dashboard's widgets into GetMetricData
// queries and returns the datapoints that breach their thresholds.
type CloudWatchSource struct {
	client    cloudWatchAPI
	dashboard string
	log       *logger.Logger
}

// NewCloudWatchSource builds a source for one dashboard in one region.
func NewCloudWatchSource(ctx context.Context, awsRegion, dashboard string, log *logger.Logger) (*CloudWatchSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for region %s: %w", awsRegion, err)
	}
	return NewCloudWatchSourceWithClient(cloudwatch.NewFromConfig(cfg), dashboard, log), nil
}

// NewCloudWatchSourceWithClient builds a source around an existing client.
func NewCloudWatchSourceWithClient(client cloudWatchAPI, dashboard string, log *logger.Logger) *CloudWatchSource {
	if log == nil {
		log = logger.NewWithCallback("metricsource", nil)
	}
	return &CloudWatchSource{client: client, dashboard: dashboard, log: log}
}

// Collect fetches every monitored widget of the service and returns the
// breaching datapoints grouped per widget, plus their summary.
func (s *CloudWatchSource) Collect(ctx context.Context, window logsource.Window, service string) ([]Group, Summary, error) {
	body, err := s.fetchDashboard(ctx)
	if err != nil {
		return nil, Summary{}, err
	}

	var groups []Group
	for _, title := range WidgetTitles(service) {
		stat, threshold := statAndThreshold(title)
		group := Group{Title: title}
		for _, def := range widgetMetrics(body, title) {
			query, metricName, ok := buildQuery(def, stat)
			if !ok {
				continue
			}
			points, err := s.breachingPoints(ctx, query, metricName, threshold, window)
			if err != nil {
				return groups, Summarize(groups), fmt.Errorf("querying %s: %w", metricName, err)
			}
			group.Points = append(group.Points, points...)
		}
		groups = append(groups, group)
	}
	return groups, Summarize(groups), nil
}

func (s *CloudWatchSource) fetchDashboard(ctx context.Context) (*dashboardBody, error) {
	out, err := s.client.GetDashboard(ctx, &cloudwatch.GetDashboardInput{DashboardName: &s.dashboard})
	if err != nil {
		return nil, fmt.Errorf("fetching dashboard %s: %w", s.dashboard, err)
	}
	if out.DashboardBody == nil {
		return nil, fmt.Errorf("dashboard %s has no body", s.dashboard)
	}
	var body dashboardBody
	if err := json.Unmarshal([]byte(*out.DashboardBody), &body); err != nil {
		return nil, fmt.Errorf("parsing dashboard %s: %w", s.dashboard, err)
	}
	return &body, nil
}

func widgetMetrics(body *dashboardBody, title string) [][]any {
	for _, w := range body.Widgets {
		if w.Properties.Title == title {
			return w.Properties.Metrics
		}
	}
	return nil
}

// buildQuery turns a dashboard metric definition array into a
// MetricDataQuery. Placeholder "." entries and non-string elements
// (rendering options) are skipped.
func buildQuery(def []any, stat string) (types.MetricDataQuery, string, bool) {
	var parts []string
	for _, el := range def {
		if s, ok := el.(string); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return types.MetricDataQuery{}, "", false
	}

	namespace, metricName := parts[0], parts[1]
	var dims []types.Dimension
	for i := 2; i+1 < len(parts); i += 2 {
		key, value := parts[i], parts[i+1]
		if key == "." || value == "." {
			continue
		}
		dims = append(dims, types.Dimension{Name: &key, Value: &value})
	}

	id := queryID(metricName)
	period := int32(Period)
	returnData := true
	return types.MetricDataQuery{
		Id: &id,
		MetricStat: &types.MetricStat{
			Metric: &types.Metric{
				Namespace:  &namespace,
				MetricName: &metricName,
				Dimensions: dims,
			},
			Period: &period,
			Stat:   &stat,
		},
		ReturnData: &returnData,
	}, metricName, true
}

func (s *CloudWatchSource) breachingPoints(ctx context.Context, query types.MetricDataQuery, metricName string, threshold float64, window logsource.Window) ([]Point, error) {
	out, err := s.client.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		MetricDataQueries: []types.MetricDataQuery{query},
		StartTime:         &window.Start,
		EndTime:           &window.End,
		ScanBy:            types.ScanByTimestampAscending,
	})
	if err != nil {
		return nil, err
	}
	if len(out.MetricDataResults) == 0 {
		return nil, nil
	}

	result := out.MetricDataResults[0]
	var points []Point
	for i, v := range result.Values {
		if v > threshold && i < len(result.Timestamps) {
			points = append(points, Point{
				Metric:    metricName,
				Timestamp: formatTimestamp(result.Timestamps[i]),
				Value:     v,
			})
		}
	}
	s.log.Debug("metric %s: %d of %d datapoints above %.0f", metricName, len(points), len(result.Values), threshold)
	return points, nil
}
