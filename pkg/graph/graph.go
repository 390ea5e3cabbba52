package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

// =============================================================================
// People Serialization API
// =============================================================================

// ReadPeopleFile reads a people file, choosing the format by extension.
func ReadPeopleFile(path string) (family.People, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "people file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	people, err := UnmarshalPeople(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return people, nil
}

// ReadPeople decodes a people document from r.
func ReadPeople(r io.Reader, format Format) (family.People, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalPeople(data, format)
}

// UnmarshalPeople decodes a people document keyed by ID or listed. The
// result is normalized (see [Normalize]).
func UnmarshalPeople(data []byte, format Format) (family.People, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return family.People{}, nil
	}

	var unmarshal func([]byte, any) error
	switch format {
	case FormatJSON:
		unmarshal = json.Unmarshal
	case FormatYAML:
		unmarshal = yaml.Unmarshal
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported people format: %q", format)
	}

	var keyed family.People
	keyedErr := unmarshal(data, &keyed)
	if keyedErr == nil {
		return Normalize(keyed), nil
	}
	var list []*family.Person
	if err := unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, keyedErr)
	}
	return fromList(list), nil
}

// WritePeopleFile writes people to path, choosing the format by extension.
// The file is created with 0644 permissions.
func WritePeopleFile(people family.People, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WritePeople(people, f, FormatForPath(path))
}

// WritePeople encodes people keyed by ID. Keys are sorted in both formats.
func WritePeople(people family.People, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(people); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(people); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported people format: %q", format)
	}
}

// Version returns a content hash of people, used as the graph version in
// cache keys. Equal graphs have equal versions.
func Version(people family.People) (string, error) {
	v, err := cache.HashJSON(people)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return v, nil
}
