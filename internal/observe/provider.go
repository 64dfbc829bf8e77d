package observe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NewMeterProvider returns an SDK meter provider reading through reader and
// tagged with the service name and version.
func NewMeterProvider(reader sdkmetric.Reader, serviceName, serviceVersion string) *sdkmetric.MeterProvider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
}

// Point is one collected counter value.
type Point struct {
	Name       string
	Attributes string // "k=v,k=v", sorted by key
	Value      int64
}

// Collect reads reader and returns every int64 sum data point, sorted by name
// then attributes.
func Collect(ctx context.Context, reader *sdkmetric.ManualReader) ([]Point, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("observe: collect: %w", err)
	}

	var points []Point

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				kvs := dp.Attributes.ToSlice()
				parts := make([]string, 0, len(kvs))

				for _, kv := range kvs {
					parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
				}

				points = append(points, Point{
					Name:       m.Name,
					Attributes: strings.Join(parts, ","),
					Value:      dp.Value,
				})
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Name != points[j].Name {
			return points[i].Name < points[j].Name
		}

		return points[i].Attributes < points[j].Attributes
	})

	return points, nil
}
