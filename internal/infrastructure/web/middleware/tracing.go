package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"crypto-resilience-service/internal/infrastructure/logging"
)

const RequestIDHeader = "X-Request-ID"

// responseWriter captura status y bytes escritos
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// RequestTracingMiddleware asigna un request ID, lo propaga en el contexto y
// registra el cierre de cada petición con su duración
func RequestTracingMiddleware(next http.Handler) http.Handler {
	httpLogger := logging.HTTP()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reusar el ID del llamador si es razonable
		requestID := r.Header.Get(RequestIDHeader)
		if !logging.ValidRequestID(requestID) {
			requestID = logging.GenerateRequestID()
		}

		startTime := time.Now()
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithStartTime(ctx, startTime)

		w.Header().Set(RequestIDHeader, requestID)
		wrapped := &responseWriter{ResponseWriter: w}

		logging.Info(ctx, "HTTP request started", logging.Fields{
			logging.FieldHTTPMethod:    r.Method,
			logging.FieldHTTPPath:      r.URL.Path,
			logging.FieldHTTPUserAgent: r.UserAgent(),
			logging.FieldHTTPRemoteIP:  ClientIP(r),
		})

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		durationMs := float64(time.Since(startTime).Nanoseconds()) / 1e6
		httpLogger.RequestCompleted(ctx, r.Method, r.URL.Path, wrapped.status(), durationMs)
	})
}

// ClientIP extrae la IP real del cliente (primer salto de X-Forwarded-For, X-Real-IP o RemoteAddr)
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" {
		return xRealIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
