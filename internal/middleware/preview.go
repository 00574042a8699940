// 包 middleware：预览服务的入口中间件，只放行本机请求并禁止缓存
package middleware

import (
	"net"
	"net/http"

	"votemap/internal/logger"
)

// Wrap：本机限制 + 响应头
// 约束：页面内嵌 Mapbox 令牌，只允许回环地址访问；其它来源返回 403
func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loopback(r.RemoteAddr) {
			logger.L().Warn("preview_remote_denied", "ip", r.RemoteAddr, "path", r.URL.Path)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("cache-control", "no-store")
		w.Header().Set("x-content-type-options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

func loopback(remote string) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
