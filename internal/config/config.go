package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/annel0/voxelcore/internal/world/block"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type WorldConfig struct {
	ChunksX   int    `yaml:"chunks_x"`
	ChunksZ   int    `yaml:"chunks_z"`
	OriginX   int    `yaml:"origin_x"`
	OriginZ   int    `yaml:"origin_z"`
	Thickness int    `yaml:"thickness"`
	Generator string `yaml:"generator"` // flat | noise
	FillType  string `yaml:"fill_type"`
	Seed      int64  `yaml:"seed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Значения по умолчанию
const (
	DefaultChunksX   = 4
	DefaultChunksZ   = 4
	DefaultThickness = 1
	DefaultGenerator = "flat"
	DefaultFillType  = "grass"
	DefaultService   = "voxelworld"
)

// GetChunksX возвращает ширину области по X с поддержкой fallback значений
func (w *WorldConfig) GetChunksX() int {
	return getIntWithEnvFallback(w.ChunksX, "VOXEL_CHUNKS_X", DefaultChunksX)
}

// GetChunksZ возвращает ширину области по Z с поддержкой fallback значений
func (w *WorldConfig) GetChunksZ() int {
	return getIntWithEnvFallback(w.ChunksZ, "VOXEL_CHUNKS_Z", DefaultChunksZ)
}

// GetThickness возвращает толщину плоского мира с поддержкой fallback значений
func (w *WorldConfig) GetThickness() int {
	return getIntWithEnvFallback(w.Thickness, "VOXEL_THICKNESS", DefaultThickness)
}

// GetGenerator возвращает имя генератора
func (w *WorldConfig) GetGenerator() string {
	if w.Generator == "" {
		return DefaultGenerator
	}
	return strings.ToLower(w.Generator)
}

// GetFillType возвращает имя типа вокселя для плоского мира
func (w *WorldConfig) GetFillType() string {
	if w.FillType == "" {
		return DefaultFillType
	}
	return w.FillType
}

// FillBlock разрешает fill_type в тип вокселя реестра
func (w *WorldConfig) FillBlock() (block.Type, error) {
	t, ok := block.Lookup(w.GetFillType())
	if !ok {
		return block.Air, fmt.Errorf("unknown fill_type %q", w.GetFillType())
	}
	return t, nil
}

// GetAddr возвращает адрес /metrics; пусто - эндпоинт выключен
func (m *MetricsConfig) GetAddr() string {
	if m.Addr != "" {
		return m.Addr
	}
	return os.Getenv("VOXEL_METRICS_ADDR")
}

// GetServiceName возвращает имя сервиса для трассировки
func (t *TelemetryConfig) GetServiceName() string {
	if t.ServiceName == "" {
		return DefaultService
	}
	return t.ServiceName
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// Default возвращает пустую конфигурацию: все значения берутся из env и дефолтов
func Default() *Config {
	return &Config{}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return Default(), nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse проверяет документ по схеме и декодирует его
func Parse(data []byte) (*Config, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет YAML документ по встроенной JSON-схеме
func Validate(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return nil // пустой файл допустим
	}

	// YAML -> JSON, чтобы валидатор получил json-совместимые типы
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}

	if err := configSchema().Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
)

func configSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiledSchema = jsonschema.MustCompileString("config.schema.json", schemaJSON)
	})
	return compiledSchema
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "world": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "chunks_x":  {"type": "integer", "minimum": 0, "maximum": 1024},
        "chunks_z":  {"type": "integer", "minimum": 0, "maximum": 1024},
        "origin_x":  {"type": "integer"},
        "origin_z":  {"type": "integer"},
        "thickness": {"type": "integer", "minimum": 0, "maximum": 256},
        "generator": {"type": "string", "enum": ["flat", "noise", "FLAT", "NOISE"]},
        "fill_type": {"type": "string", "minLength": 1},
        "seed":      {"type": "integer"}
      }
    },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"type": "string"},
        "dir":   {"type": "string"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "addr": {"type": "string"}
      }
    },
    "telemetry": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled":      {"type": "boolean"},
        "service_name": {"type": "string"}
      }
    }
  }
}`
