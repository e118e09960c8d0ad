// Package workload reads and writes workload files.
//
// Three formats are accepted, chosen by file extension: HCL (.hcl), YAML
// (.yaml, .yml) and JSON (anything else). Every format yields a validated
// *types.Workload.
package workload

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

// Format is a workload file encoding
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	defaultSuspendMinutes = 10
	defaultDevComputeType = "All-Purpose Compute"
)

// FormatFor picks the encoding from a file name
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hcl":
		return FormatHCL
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// newWorkload returns the starting point every decoder fills in. Fields not
// present in the file keep these values.
func newWorkload() *types.Workload {
	return &types.Workload{
		StorageMode:      types.StorageDirect,
		IncludeStageZone: true,
	}
}

// ParseFile reads and parses a workload file
func ParseFile(path string) (*types.Workload, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("workload file", path)
		}
		return nil, errors.Wrap(errors.TypeInput, "read workload "+path, err)
	}
	return Parse(filepath.Base(path), src)
}

// Parse decodes a workload, choosing the format from name
func Parse(name string, src []byte) (*types.Workload, error) {
	var (
		w   *types.Workload
		err error
	)
	switch FormatFor(name) {
	case FormatHCL:
		w, err = parseHCL(name, src)
	case FormatYAML:
		w = newWorkload()
		dec := yaml.NewDecoder(bytes.NewReader(src))
		dec.KnownFields(true)
		if derr := dec.Decode(w); derr != nil && derr != io.EOF {
			err = errors.Wrap(errors.TypeInput, "parse workload "+name, derr)
		}
	default:
		w = newWorkload()
		dec := json.NewDecoder(bytes.NewReader(src))
		dec.DisallowUnknownFields()
		if derr := dec.Decode(w); derr != nil {
			err = errors.Wrap(errors.TypeInput, "parse workload "+name, derr)
		}
	}
	if err != nil {
		return nil, err
	}

	normalize(w)
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// normalize fills in defaults for values a file may leave empty
func normalize(w *types.Workload) {
	if w.StorageMode == "" {
		w.StorageMode = types.StorageDirect
	}
	for i := range w.Tiers {
		if tier, ok := types.ParseTier(string(w.Tiers[i].Tier)); ok {
			w.Tiers[i].Tier = tier
		}
		if w.Tiers[i].Jobs == nil {
			w.Tiers[i].Jobs = []types.JobConfig{}
		}
	}
	for i := range w.DirectZones {
		if w.DirectZones[i].Unit == "" {
			w.DirectZones[i].Unit = types.UnitGB
		}
	}
}

// Marshal encodes a workload as YAML or JSON. HCL output is not supported.
func Marshal(w *types.Workload, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(w)
	case FormatJSON:
		return json.MarshalIndent(w, "", "  ")
	default:
		return nil, errors.Inputf("cannot encode workload as %q", format)
	}
}

// WriteFile encodes a workload in the format implied by path
func WriteFile(path string, w *types.Workload) error {
	data, err := Marshal(w, FormatFor(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.TypeInternal, "create directory for "+path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.TypeInternal, "write workload "+path, err)
	}
	return nil
}
