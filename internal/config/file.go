package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadAppLimits overlays the YAML file at path on top of base.
// Keys missing from the file (or set to zero) keep the base value.
//
// Example:
//
//	page_size: 20
//	max_content_length: 500
//	supported_file_types: [image/png, image/jpeg]
func LoadAppLimits(path string, base AppLimits) (AppLimits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}

	var file AppLimits
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse config file %s: %w", path, err)
	}

	out := base
	if file.PageSize > 0 {
		out.PageSize = file.PageSize
	}
	if file.MaxPageSize > 0 {
		out.MaxPageSize = file.MaxPageSize
	}
	if file.MaxContentLength > 0 {
		out.MaxContentLength = file.MaxContentLength
	}
	if file.MaxFileSize > 0 {
		out.MaxFileSize = file.MaxFileSize
	}
	if len(file.SupportedFileTypes) > 0 {
		out.SupportedFileTypes = file.SupportedFileTypes
	}
	if file.EnrichConcurrency > 0 {
		out.EnrichConcurrency = file.EnrichConcurrency
	}
	if file.PopularLimit > 0 {
		out.PopularLimit = file.PopularLimit
	}

	if out.PageSize > out.MaxPageSize {
		return base, fmt.Errorf("config file %s: page_size %d exceeds max_page_size %d", path, out.PageSize, out.MaxPageSize)
	}
	return out, nil
}
