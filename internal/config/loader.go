package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig читает YAML поверх Default(). При пустом пути возвращает значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				// Логируем ошибку, но не возвращаем — иначе перезапишем основную ошибку
				log.Printf("Warning: failed to close config file: %v", closeErr)
			}
		}()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}
