package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dataplane-io/datahealth/internal/health"
)

// maxBaseDimensions caps caller-supplied dimensions: CloudWatch allows 10
// per metric and the per-status/per-dataset metrics add one of their own.
const maxBaseDimensions = 9

// putMetricsBatchSize is the CloudWatch PutMetricData payload limit.
const putMetricsBatchSize = 20

// ParseDimensions parses a comma-separated key=value list into CloudWatch
// dimensions. An empty string yields no dimensions.
func ParseDimensions(raw string) ([]types.Dimension, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var dims []types.Dimension
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("cloudwatch dimensions must be key=value pairs, got %q", item)
		}
		dims = append(dims, types.Dimension{Name: aws.String(key), Value: aws.String(value)})
	}
	return dims, nil
}

// BuildCloudWatchMetrics converts the report into the metric set pushed to
// CloudWatch: the overall status, the dataset total, one count per status,
// and optionally one status gauge per dataset. Status gauges use the
// severity values GREEN=0, YELLOW=1, RED=2.
func BuildCloudWatchMetrics(report *health.Report, baseDims []types.Dimension, includeDatasets bool) ([]types.MetricDatum, error) {
	if len(baseDims) > maxBaseDimensions {
		return nil, fmt.Errorf("cloudwatch dimensions limit exceeded (max %d base dimensions)", maxBaseDimensions)
	}

	metrics := []types.MetricDatum{
		{
			MetricName: aws.String("DatasetHealthOverallStatus"),
			Dimensions: baseDims,
			Value:      aws.Float64(float64(report.Status.Severity())),
			Unit:       types.StandardUnitNone,
		},
		{
			MetricName: aws.String("DatasetHealthTotal"),
			Dimensions: baseDims,
			Value:      aws.Float64(float64(report.Summary.Total)),
			Unit:       types.StandardUnitCount,
		},
	}

	for _, status := range health.AllStatuses() {
		metrics = append(metrics, types.MetricDatum{
			MetricName: aws.String("DatasetHealthCount"),
			Dimensions: withDimension(baseDims, "Status", string(status)),
			Value:      aws.Float64(float64(report.Summary.Count(status))),
			Unit:       types.StandardUnitCount,
		})
	}

	if includeDatasets {
		for _, entry := range report.Datasets {
			metrics = append(metrics, types.MetricDatum{
				MetricName: aws.String("DatasetHealthDatasetStatus"),
				Dimensions: withDimension(baseDims, "Dataset", entry.Dataset.Name),
				Value:      aws.Float64(float64(entry.Status.Severity())),
				Unit:       types.StandardUnitNone,
			})
		}
	}

	return metrics, nil
}

// withDimension returns base plus one extra dimension, leaving base intact.
func withDimension(base []types.Dimension, name, value string) []types.Dimension {
	dims := make([]types.Dimension, 0, len(base)+1)
	dims = append(dims, base...)
	return append(dims, types.Dimension{Name: aws.String(name), Value: aws.String(value)})
}

// metricsAPI is the slice of the CloudWatch client the publisher uses.
type metricsAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher pushes report metrics into a CloudWatch namespace.
type CloudWatchPublisher struct {
	client    metricsAPI
	namespace string
}

// NewCloudWatchPublisher builds a publisher using the default AWS credential
// chain. region overrides the SDK's resolved region when non-empty.
func NewCloudWatchPublisher(ctx context.Context, namespace, region string) (*CloudWatchPublisher, error) {
	if namespace == "" {
		return nil, fmt.Errorf("cloudwatch namespace is required")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &CloudWatchPublisher{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}, nil
}

// Publish builds the metric set for report and pushes it in batches of 20,
// the PutMetricData limit. Returns the number of metrics pushed.
func (p *CloudWatchPublisher) Publish(ctx context.Context, report *health.Report, baseDims []types.Dimension, includeDatasets bool) (int, error) {
	metrics, err := BuildCloudWatchMetrics(report, baseDims, includeDatasets)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(metrics); start += putMetricsBatchSize {
		end := min(start+putMetricsBatchSize, len(metrics))
		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: metrics[start:end],
		})
		if err != nil {
			return 0, fmt.Errorf("pushing metrics to CloudWatch: %w", err)
		}
	}
	return len(metrics), nil
}
