// 包 config：集中读取运行配置（.env 文件与环境变量），供入口显式传入各阶段
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 显示方式
const (
	DisplayServe = "serve"
	DisplayFile  = "file"
	DisplayNone  = "none"
)

const (
	DefaultTitle        = "2025 By-Election Results - Relative Party Strength"
	DefaultStyle        = "mapbox://styles/markedwardson/clgbco9rt001z01nw5kb5p0rr"
	DefaultCityHall     = "Vancouver City Hall"
	DefaultMailLocation = "Vote By Mail"
	DefaultMailLat      = 49.292869
	DefaultMailLon      = -123.184003
)

// ErrMissingToken：未配置 MAPBOX_KEY
var ErrMissingToken = errors.New("config: MAPBOX_KEY is not set")

// Inputs：输入文件与清洗相关配置，不依赖地图令牌
type Inputs struct {
	ResultsPath   string
	ResultsSheet  string
	LocationsPath string
	PartyMapping  string
	CityHallLabel string
	MailLocation  string
	MailLat       float64
	MailLon       float64
	StrictJoin    bool
}

// Map：渲染相关配置
type Map struct {
	Token       string
	Title       string
	Style       string
	Zoom        float64
	SizeDivisor float64
	Display     string
	Addr        string
	Output      string
	StaticPNG   string
	GeoJSON     string
	Geocode     bool
}

// Config：一次运行的完整配置
type Config struct {
	Inputs
	Map Map
}

// LoadEnvFiles：加载 .env 与 data/env/.env；文件缺失不视为错误
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load：读取完整配置
// 约束：MAPBOX_KEY 缺失返回 ErrMissingToken；数值/布尔变量格式错误返回错误，不静默回退
func Load() (*Config, error) {
	LoadEnvFiles()
	in, err := LoadInputs()
	if err != nil {
		return nil, err
	}
	m, err := loadMap()
	if err != nil {
		return nil, err
	}
	return &Config{Inputs: *in, Map: *m}, nil
}

// LoadInputs：只读取输入相关配置（results-check 使用，无需令牌）
func LoadInputs() (*Inputs, error) {
	in := &Inputs{
		ResultsPath:   envOr("RESULTS_PATH", "data.csv"),
		ResultsSheet:  os.Getenv("RESULTS_SHEET"),
		LocationsPath: envOr("LOCATIONS_PATH", "voting-places-2025.csv"),
		PartyMapping:  os.Getenv("PARTY_MAPPING"),
		CityHallLabel: envOr("CITY_HALL_LABEL", DefaultCityHall),
		MailLocation:  envOr("MAIL_LOCATION", DefaultMailLocation),
	}
	var err error
	if in.MailLat, err = envFloat("MAIL_LAT", DefaultMailLat); err != nil {
		return nil, err
	}
	if in.MailLon, err = envFloat("MAIL_LON", DefaultMailLon); err != nil {
		return nil, err
	}
	if in.MailLat < -90 || in.MailLat > 90 || in.MailLon < -180 || in.MailLon > 180 {
		return nil, fmt.Errorf("config: mail-in override %v, %v out of range", in.MailLat, in.MailLon)
	}
	if in.StrictJoin, err = envBool("STRICT_JOIN", false); err != nil {
		return nil, err
	}
	return in, nil
}

func loadMap() (*Map, error) {
	token := strings.TrimSpace(os.Getenv("MAPBOX_KEY"))
	if token == "" {
		return nil, ErrMissingToken
	}
	m := &Map{
		Token:     token,
		Title:     envOr("MAP_TITLE", DefaultTitle),
		Style:     envOr("MAPBOX_STYLE", DefaultStyle),
		Display:   strings.ToLower(envOr("MAP_DISPLAY", DisplayServe)),
		Addr:      envOr("MAP_ADDR", "127.0.0.1:8050"),
		Output:    envOr("MAP_OUTPUT", "votemap.html"),
		StaticPNG: os.Getenv("MAP_STATIC_PNG"),
		GeoJSON:   os.Getenv("MAP_GEOJSON"),
	}
	switch m.Display {
	case DisplayServe, DisplayFile, DisplayNone:
	default:
		return nil, fmt.Errorf("config: MAP_DISPLAY %q must be serve, file or none", m.Display)
	}
	var err error
	if m.Zoom, err = envFloat("MAP_ZOOM", 12); err != nil {
		return nil, err
	}
	if m.SizeDivisor, err = envFloat("SIZE_DIVISOR", 100); err != nil {
		return nil, err
	}
	if m.SizeDivisor <= 0 {
		return nil, fmt.Errorf("config: SIZE_DIVISOR must be positive, got %v", m.SizeDivisor)
	}
	if m.Geocode, err = envBool("GEOCODE_FALLBACK", false); err != nil {
		return nil, err
	}
	return m, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
