package client

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/hyperhttp/client"

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Tracing returns middleware that records one client span per request using
// the global tracer provider. Register it from a Build step:
//
//	cfg.Build = func(b *client.Builder) {
//	    b.Use(client.Tracing())
//	    b.SetDecoder(client.JSONDecoder())
//	}
func Tracing() Middleware {
	return TracingWithProvider(otel.GetTracerProvider())
}

// TracingWithProvider is Tracing with an explicit tracer provider.
func TracingWithProvider(tp trace.TracerProvider) Middleware {
	tracer := tp.Tracer(tracerName)
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
				trace.WithSpanKind(trace.SpanKindClient),
			)
			span.SetAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.full", req.URL.String()),
				attribute.String("server.address", req.URL.Hostname()),
			)

			resp, err := next.RoundTrip(req.WithContext(ctx))
			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case resp.StatusCode >= 400:
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				span.SetStatus(codes.Error, resp.Status)
			default:
				span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
				span.SetStatus(codes.Ok, "")
			}
			span.End()
			return resp, err
		})
	}
}
