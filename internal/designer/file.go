package designer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dbdesigner/internal/models"
)

// LoadFile reads a design document from a .json, .yaml or .yml file.
func LoadFile(path string) (*models.Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a design document. ext selects the format and defaults to JSON.
func Parse(data []byte, ext string) (*models.Design, error) {
	var design models.Design
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &design); err != nil {
			return nil, fmt.Errorf("failed to parse design: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &design); err != nil {
			return nil, fmt.Errorf("failed to parse design: %w", err)
		}
	}
	if err := design.Validate(); err != nil {
		return nil, fmt.Errorf("invalid design: %w", err)
	}
	return &design, nil
}
