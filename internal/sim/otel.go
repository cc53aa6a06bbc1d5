package sim

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/lst-cpp-project-2025-2026/parklogic/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

func ctx() context.Context {
	return context.Background()
}
