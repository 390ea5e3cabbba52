package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lineage/pkg/layout"
)

// =============================================================================
// Layout Result Serialization
// =============================================================================

// MarshalResult encodes a layout result as indented JSON. Nil slices are
// written as empty arrays.
func MarshalResult(res layout.Result) ([]byte, error) {
	data, err := json.MarshalIndent(withEmptySlices(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// UnmarshalResult decodes a layout result.
func UnmarshalResult(data []byte) (layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return layout.Result{}, fmt.Errorf("decode: %w", err)
	}
	return withEmptySlices(res), nil
}

// WriteResult writes a layout result as JSON to w.
func WriteResult(res layout.Result, w io.Writer) error {
	data, err := MarshalResult(res)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteResultFile writes a layout result to a JSON file.
func WriteResultFile(res layout.Result, path string) error {
	data, err := MarshalResult(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadResultFile reads a layout result from a JSON file.
func ReadResultFile(path string) (layout.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalResult(data)
}

func withEmptySlices(res layout.Result) layout.Result {
	if res.Nodes == nil {
		res.Nodes = []layout.TreeNode{}
	}
	if res.Links == nil {
		res.Links = []layout.TreeLink{}
	}
	if res.CollapsePoints == nil {
		res.CollapsePoints = []layout.CollapsePoint{}
	}
	if res.FanArcs == nil {
		res.FanArcs = []layout.FanArc{}
	}
	return res
}
