package render

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"votemap/internal/logger"
	"votemap/internal/metrics"
	"votemap/internal/middleware"
)

// Handler：预览路由
// - /：地图页面
// - /figure.json：图形 JSON
// - /metrics：本次运行的 Prometheus 指标
// - /healthz：存活检查
func Handler(fig *Figure, l *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		if err := WriteHTML(w, fig); err != nil {
			l.Error("page_write_error", "err", err)
		}
	})
	mux.HandleFunc("/figure.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(fig); err != nil {
			l.Error("figure_write_error", "err", err)
		}
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.Wrap(logger.AccessMiddleware(l)(mux))
}

// Serve：在 addr 上提供预览，直到 ctx 取消
// 约束：监听成功后以实际地址调用 ready（用于打开浏览器）；ctx 取消后 5s 内优雅关闭
func Serve(ctx context.Context, addr string, h http.Handler, ready func(url string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	url := "http://" + ln.Addr().String() + "/"
	logger.L().Info("listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.L().Info("server_shutdown")
		return srv.Shutdown(sctx)
	})
	if ready != nil {
		ready(url)
	}
	return g.Wait()
}
