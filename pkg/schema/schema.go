// Package schema writes JSON Schema documents for the query catalog and
// for contract messages.
package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

// Entry names a type to export. The document is written to Name + ".json".
type Entry struct {
	Name  string
	Value any
	// Union exports a struct of optional pointer fields as oneOf, one
	// single-key object per field.
	Union bool
}

// Catalog lists the Babylon query union and every response record.
func Catalog() []Entry {
	return []Entry{
		{Name: "babylon_query", Value: bindings.BabylonQuery{}, Union: true},
		{Name: "current_epoch_response", Value: bindings.CurrentEpochResponse{}},
		{Name: "latest_finalized_epoch_info_response", Value: bindings.LatestFinalizedEpochInfoResponse{}},
		{Name: "btc_base_header_response", Value: bindings.BtcBaseHeaderResponse{}},
		{Name: "btc_tip_response", Value: bindings.BtcTipResponse{}},
		{Name: "btc_header_query_response", Value: bindings.BtcHeaderQueryResponse{}},
		{Name: "btc_block_header_info", Value: bindings.BtcBlockHeaderInfo{}},
		{Name: "btc_block_header", Value: bindings.BtcBlockHeader{}},
		{Name: "finalized_epoch_info", Value: bindings.FinalizedEpochInfo{}},
	}
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
}

// Generate builds the schema for e.
func Generate(e Entry) (*jsonschema.Schema, error) {
	t := reflect.TypeOf(e.Value)
	if t == nil {
		return nil, fmt.Errorf("schema %s: nil value", e.Name)
	}
	r := newReflector()

	var s *jsonschema.Schema
	if e.Union {
		var err error
		if s, err = union(r, t); err != nil {
			return nil, fmt.Errorf("schema %s: %w", e.Name, err)
		}
	} else {
		s = r.ReflectFromType(t)
		markNullable(s, t)
	}
	s.Version = jsonschema.Version
	s.Title = e.Name
	return s, nil
}

func union(r *jsonschema.Reflector, t reflect.Type) (*jsonschema.Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("union %s is not a struct", t)
	}
	s := &jsonschema.Schema{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := jsonName(f)
		if tag == "" || f.Type.Kind() != reflect.Pointer {
			continue
		}
		variant := r.ReflectFromType(f.Type.Elem())
		variant.Version = ""

		props := jsonschema.NewProperties()
		props.Set(tag, variant)
		s.OneOf = append(s.OneOf, &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			Required:             []string{tag},
			AdditionalProperties: jsonschema.FalseSchema,
		})
	}
	if len(s.OneOf) == 0 {
		return nil, fmt.Errorf("union %s has no variants", t)
	}
	return s, nil
}

// markNullable lets pointer fields without omitempty be null.
func markNullable(s *jsonschema.Schema, t reflect.Type) {
	if t.Kind() != reflect.Struct || s.Properties == nil {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if name == "" || f.Type.Kind() != reflect.Pointer || strings.Contains(f.Tag.Get("json"), "omitempty") {
			continue
		}
		prop, ok := s.Properties.Get(name)
		if !ok {
			continue
		}
		s.Properties.Set(name, &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{prop, {Type: "null"}},
		})
	}
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Export writes one document per entry into dir, creating it if needed and
// removing any *.json files already there.
func Export(dir string, entries []Entry, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing stale schema: %w", err)
		}
	}

	written := make([]string, 0, len(entries))
	for _, e := range entries {
		s, err := Generate(e)
		if err != nil {
			return written, err
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encoding schema %s: %w", e.Name, err)
		}
		path := filepath.Join(dir, e.Name+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Debug("schema written", "path", path)
		written = append(written, path)
	}
	logger.Info("schemas exported", "dir", dir, "count", len(written), "removed", len(stale))
	return written, nil
}
