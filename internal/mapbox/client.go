// 包 mapbox：Mapbox 正向地理编码客户端，为设施表中缺失的投票地点提供坐标兜底
package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"votemap/internal/logger"
	"votemap/internal/metrics"
)

// DefaultBaseURL：Mapbox 地理编码 v5 接口
const DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

var ErrMissingToken = errors.New("mapbox: missing access token")

// 文档注释：地理编码响应结构
// 约束：只解析首个要素的 center 与名称；center 为 [lon, lat]
type GeocodeResponse struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Message  string    `json:"message,omitempty"`
}

type Feature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
	Relevance float64   `json:"relevance"`
}

// Client：持有令牌与 HTTP 客户端
type Client struct {
	Token   string
	BaseURL string
	HTTP    *http.Client
}

// New：创建客户端；hc 为空时使用 5s 超时的默认客户端
func New(token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{Token: token, BaseURL: DefaultBaseURL, HTTP: hc}
}

// 文档注释：按名称查询单个地点坐标
// 参数：
// - ctx：请求上下文，用于控制超时与取消；
// - query：地点名称，原样作为路径段转义；
// - near：检索偏置点，零值时不传 proximity。
// 返回：坐标、是否找到；无要素时 found=false 且 err=nil，HTTP 或解码失败返回错误。
func (c *Client) Geocode(ctx context.Context, query string, near orb.Point) (orb.Point, bool, error) {
	if c.Token == "" {
		return orb.Point{}, false, ErrMissingToken
	}
	q := url.Values{}
	q.Set("access_token", c.Token)
	q.Set("limit", "1")
	if near != (orb.Point{}) {
		q.Set("proximity", strconv.FormatFloat(near.Lon(), 'f', 6, 64)+","+strconv.FormatFloat(near.Lat(), 'f', 6, 64))
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u := base + "/" + url.PathEscape(query) + ".json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return orb.Point{}, false, err
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.Inc()
	logger.L().Debug("mapbox_req", "query", query)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.L().Error("mapbox_http_error", "err", err)
		metrics.GeocodeFailTotal.Inc()
		return orb.Point{}, false, err
	}
	defer resp.Body.Close()
	var r GeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("mapbox_decode_error", "status", resp.StatusCode, "err", err)
		metrics.GeocodeFailTotal.Inc()
		return orb.Point{}, false, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.Observe(float64(dur))
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeFailTotal.Inc()
		return orb.Point{}, false, fmt.Errorf("mapbox: status %d: %s", resp.StatusCode, r.Message)
	}
	if len(r.Features) == 0 || len(r.Features[0].Center) != 2 {
		metrics.GeocodeFailTotal.Inc()
		logger.L().Debug("mapbox_no_feature", "query", query, "duration_ms", dur)
		return orb.Point{}, false, nil
	}
	f := r.Features[0]
	pt := orb.Point{f.Center[0], f.Center[1]}
	logger.L().Debug("mapbox_resp", "query", query, "place", f.PlaceName, "relevance", f.Relevance, "duration_ms", dur)
	return pt, true, nil
}
