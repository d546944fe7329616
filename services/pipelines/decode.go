// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipelines

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"gopkg.in/yaml.v3"
)

// Format names a pipeline document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodePipeline reads a pipeline document and checks it against the same
// binding rules the HTTP handler applies.
//
// Description:
//
//	Used where no gin context exists (the check command). Every failure
//	wraps ErrInvalidPipeline.
//
// Inputs:
//
//	r - Document source.
//	format - FormatJSON or FormatYAML.
//
// Outputs:
//
//	*Pipeline - The decoded pipeline.
//	error - Non-nil if decoding or validation fails.
func DecodePipeline(r io.Reader, format Format) (*Pipeline, error) {
	var p Pipeline

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidPipeline, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidPipeline, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPipeline, format)
	}

	if err := binding.Validator.ValidateStruct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}
	return &p, nil
}
