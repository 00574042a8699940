package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// recorder 记下预览页面请求的状态码与响应字节数
type recorder struct {
	http.ResponseWriter
	code int
	n    int
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.n += n
	return n, err
}

// AccessMiddleware：预览服务的访问日志（Debug 级别）
// 约束：页面、图形 JSON、指标各占一条 http_access；未写状态码时按 200 记
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			rec := &recorder{ResponseWriter: w, code: http.StatusOK}
			t0 := time.Now()
			next.ServeHTTP(rec, req)
			l.Debug("http_access",
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.code,
				"bytes", rec.n,
				"duration_ms", time.Since(t0).Milliseconds(),
			)
		})
	}
}
