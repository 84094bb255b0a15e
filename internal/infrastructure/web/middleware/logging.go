package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"crypto-resilience-service/internal/infrastructure/logging"
)

var suspiciousPatterns = []string{
	"../",
	"<script",
	"select ",
	"union ",
	"drop ",
	"exec(",
	"eval(",
}

// LoggingMiddleware complementa a RequestTracingMiddleware con logs de debug
// y avisos de seguridad
func LoggingMiddleware(next http.Handler) http.Handler {
	httpLogger := logging.HTTP()
	securityLogger := logging.Security()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := ClientIP(r)

		httpLogger.RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), clientIP)

		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers": importantHeaders(r),
			"query":   r.URL.RawQuery,
		})

		if reason, ok := suspicious(r); ok {
			securityLogger.SuspiciousActivity(ctx, clientIP, reason)
		}

		next.ServeHTTP(w, r)
	})
}

func importantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)
	for _, name := range []string{"Content-Type", "Accept", "Cache-Control", "X-Forwarded-For", "X-Real-IP"} {
		if value := r.Header.Get(name); value != "" {
			headers[name] = value
		}
	}
	return headers
}

// suspicious detecta patrones comunes de ataque en path y query
func suspicious(r *http.Request) (string, bool) {
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	target := strings.ToLower(r.URL.Path + "?" + query)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(target, pattern) {
			return "pattern:" + strings.TrimSpace(pattern), true
		}
	}

	// 1MB
	if r.ContentLength > 1<<20 {
		return "oversized_body", true
	}
	return "", false
}
