package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName 可执行文件同目录下的可选配置文件
const ConfigFileName = "survis.toml"

// 输入输出路径与分辨率固定，不受配置文件影响
const (
	BibPath   = "bib/references.bib"
	ImagePath = "figs/hist_years.png"
	DPI       = 300
)

// AppConfig 应用配置：只包含版式与日志这类不影响统计结果的设置
type AppConfig struct {
	Chart ChartConfig `toml:"chart"`
	Log   LogConfig   `toml:"log"`
}

// ChartConfig 图表版式
type ChartConfig struct {
	WidthInch  float64 `toml:"width_inch" validate:"gt=0"`
	HeightInch float64 `toml:"height_inch" validate:"gt=0"`
	PlotShare  float64 `toml:"plot_share" validate:"gt=0,lte=1"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Chart: ChartConfig{
			WidthInch:  12,
			HeightInch: 6,
			PlotShare:  0.8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 survis.toml 加载配置
// 文件不存在时使用默认配置
func LoadConfig() (*AppConfig, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadConfigFrom(filepath.Join(exeDir, ConfigFileName))
}

// LoadConfigFrom 从指定路径加载配置，未配置的字段保留默认值
func LoadConfigFrom(path string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	// 未知字段（例如试图覆盖输入输出路径）直接报错
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", path, err)
	}
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return config, nil
}

var validate = validator.New()

// Validate 按字段标签校验配置
func Validate(config *AppConfig) error {
	if config == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(config); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
