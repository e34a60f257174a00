package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsSink emits custom CloudWatch metrics under one namespace.
type MetricsSink struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

func NewMetricsSink(cw CloudWatchAPI, namespace string) *MetricsSink {
	return &MetricsSink{CloudWatch: cw, Namespace: namespace, nowFunc: time.Now}
}

// Count records a count-unit datapoint.
func (m *MetricsSink) Count(ctx context.Context, name string, value float64, dimensions map[string]string) error {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dims := make([]cwtypes.Dimension, 0, len(keys))
	for _, k := range keys {
		dims = append(dims, cwtypes.Dimension{Name: awsString(k), Value: awsString(dimensions[k])})
	}

	ts := m.nowFunc()
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{{
			MetricName: awsString(name),
			Dimensions: dims,
			Timestamp:  &ts,
			Unit:       cwtypes.StandardUnitCount,
			Value:      &value,
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
