package telemetry

import (
	"strconv"

	"PortalDHT/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// KeyAttributes renders a content key as span attributes under the
// given prefix.
func KeyAttributes(prefix string, key domain.ContentKey) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(prefix+".hex", key.Hex()),
		attribute.Int(prefix+".len", len(key)),
	}
}

// DistanceAttribute renders an XOR distance as a span attribute. The
// value is encoded as a decimal string because attribute.Int64 would
// overflow on distances above 1<<63.
func DistanceAttribute(name string, d domain.Distance) attribute.KeyValue {
	return attribute.String(name, strconv.FormatUint(uint64(d), 10))
}
