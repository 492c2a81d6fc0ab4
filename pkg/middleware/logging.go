package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/iota-facility/pkg/constants"
	"github.com/iota-uz/iota-facility/pkg/httpapi"
)

// LoggerOptions controls what WithLogger records for each request.
// Bodies are only captured for JSON payloads and are cut at MaxBodyLength
// bytes; workbook uploads and downloads are never buffered.
type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int

	RequestIDHeader string
	RealIPHeader    string

	Repanic bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodyLength:   512,
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
	}
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	capture       bool
	limit         int
	body          bytes.Buffer
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if w.statusWritten {
		return
	}
	w.statusCode = code
	w.statusWritten = true
	w.capture = w.capture && isJSON(w.Header().Get("Content-Type"))
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.WriteHeader(http.StatusOK)
	}
	if w.capture {
		if room := w.limit - w.body.Len(); room > 0 {
			w.body.Write(b[:min(room, len(b))])
		}
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

func requestID(r *http.Request, header string) string {
	if v := strings.TrimSpace(r.Header.Get(header)); header != "" && v != "" {
		return v
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("facility-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// snippet returns the body as parsed JSON when it is complete and valid,
// otherwise as a string.
func snippet(body []byte, truncated bool) any {
	if !truncated {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err == nil {
			return parsed
		}
	}
	return string(body)
}

// WithLogger opens the root span of every request, puts a request-scoped
// logrus entry into the context and logs start, completion and panics.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestID(r, opts.RequestIDHeader)
			ip, _ := realIP(r, opts.RealIPHeader)

			entry := logger.WithFields(logrus.Fields{
				"request-id": reqID,
				"path":       r.URL.Path,
				"method":     r.Method,
			})
			entry.WithFields(logrus.Fields{
				"ip":         ip,
				"user-agent": r.UserAgent(),
				"length":     r.ContentLength,
			}).Info("request started")

			if opts.LogRequestBody && r.Body != nil && r.Method == http.MethodPost && isJSON(r.Header.Get("Content-Type")) {
				head, err := io.ReadAll(io.LimitReader(r.Body, int64(opts.MaxBodyLength)+1))
				if err != nil {
					entry.WithError(err).Warn("failed to read request-body")
				}
				truncated := len(head) > opts.MaxBodyLength
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
				if truncated {
					head = head[:opts.MaxBodyLength]
				}
				entry.WithField("request-body", snippet(head, truncated)).Info("request-body")
			}

			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(
				ctx,
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("http.request_id", reqID),
					attribute.String("net.peer.ip", ip),
				),
			)
			defer span.End()
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				entry = entry.WithField("trace-id", sc.TraceID().String())
			}
			w.Header().Set(headerOr(opts.RequestIDHeader, "X-Request-ID"), reqID)

			ctx = context.WithValue(ctx, constants.LoggerKey, entry)

			ww := &responseCaptureWriter{
				ResponseWriter: w,
				capture:        opts.LogResponseBody,
				limit:          opts.MaxBodyLength,
			}

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				entry.WithFields(logrus.Fields{
					"panic":    recovered,
					"stack":    string(debug.Stack()),
					"query":    r.URL.RawQuery,
					"duration": time.Since(start),
				}).Error("panic recovered in request handler")
				span.SetAttributes(attribute.Int("http.status_code", http.StatusInternalServerError))

				if !ww.statusWritten {
					_ = httpapi.WriteError(ww, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", map[string]string{
						"request_id": reqID,
					})
				}
				if opts.Repanic {
					panic(recovered)
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			duration := time.Since(start)
			fields := logrus.Fields{
				"duration":     duration,
				"status-code":  status,
				"status-class": status / 100,
			}
			if ww.capture && ww.body.Len() > 0 {
				fields["response-body"] = snippet(ww.body.Bytes(), ww.body.Len() >= ww.limit)
			}
			entry.WithFields(fields).Info("request completed")

			span.SetAttributes(
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
				attribute.Int("http.status_code", status),
			)
		})
	}
}

func headerOr(h, fallback string) string {
	if h == "" {
		return fallback
	}
	return h
}
