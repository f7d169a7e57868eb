package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ozzo/ozzo-validation/v3"
	"go.uber.org/zap"
)

// GraderConfig holds everything the grading service needs at startup:
// a logger configuration and the directory containing dataset scripts.
type GraderConfig struct {
	LoggerConfig zap.Config `json:"logger"`

	DatasetDir string `json:"dataset_dir"`
}

func (c *GraderConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.DatasetDir, validation.Required),
	)
}

func (c *GraderConfig) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := c.loadFromJSON(data); err != nil {
			return err
		}
		return c.Validate()
	default:
		return fmt.Errorf("unknown configuration file extension: %s", ext)
	}
}

func (c *GraderConfig) loadFromJSON(data []byte) error {
	return json.Unmarshal(data, c)
}

const defaultConfigFile = "config.json"

func (c *GraderConfig) LoadDefault() error {
	return c.LoadFromFile(defaultConfigFile)
}
