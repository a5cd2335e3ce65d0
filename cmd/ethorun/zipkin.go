package main

import (
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	zipkin "github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	zipkintracer "github.com/openzipkin-contrib/zipkin-go-opentracing"
)

// newZipkinTracer builds an opentracing.Tracer backed by a native
// zipkin-go tracer reporting to endpointURL, wrapped to satisfy the
// opentracing interface that ethogram.WithTracer expects. Kept separate
// from main.go so the zipkin-go-opentracing and zipkin-go imports stay
// scoped to the one flag that opts into them.
func newZipkinTracer(endpointURL, serviceName string) (opentracing.Tracer, error) {
	reporter := zipkinhttp.NewReporter(endpointURL)

	localEndpoint, err := zipkin.NewEndpoint(serviceName, "")
	if err != nil {
		return nil, fmt.Errorf("ethorun: building zipkin endpoint: %w", err)
	}

	native, err := zipkin.NewTracer(reporter, zipkin.WithLocalEndpoint(localEndpoint))
	if err != nil {
		return nil, fmt.Errorf("ethorun: building zipkin tracer: %w", err)
	}

	return zipkintracer.Wrap(native), nil
}
