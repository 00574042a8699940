package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-rod/rod/lib/launcher"

	"votemap/internal/config"
	"votemap/internal/logger"
)

// Opener：在浏览器中打开地址
type Opener func(url string)

// Browser：系统默认浏览器
func Browser(url string) {
	logger.L().Info("browser_open", "url", url)
	launcher.Open(url)
}

// Display：按显示方式输出地图
// - serve：启动预览服务并打开浏览器，阻塞到 ctx 取消
// - file：写出页面后在浏览器中打开
// - none：只写出页面
func Display(ctx context.Context, fig *Figure, m config.Map, open Opener) error {
	switch m.Display {
	case config.DisplayServe:
		return Serve(ctx, m.Addr, Handler(fig, logger.L()), open)
	case config.DisplayFile, config.DisplayNone:
		if err := WriteFile(m.Output, fig); err != nil {
			return err
		}
		logger.L().Info("page_written", "path", m.Output)
		if m.Display == config.DisplayFile && open != nil {
			abs, err := filepath.Abs(m.Output)
			if err != nil {
				return err
			}
			open("file://" + filepath.ToSlash(abs))
		}
		return nil
	default:
		return fmt.Errorf("render: unknown display mode %q", m.Display)
	}
}
