package hostapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

var (
	// ErrNullValue is returned when null is decoded into a value that cannot be absent.
	ErrNullValue = errors.New("null value")
	// ErrMissingField is returned when a required object key is absent.
	ErrMissingField = errors.New("missing field")
)

// UnmarshalStrict decodes data into v, which must be a non-nil pointer.
// Unlike json.Unmarshal it rejects unknown object keys, trailing data,
// missing keys for fields that are neither pointers nor tagged omitempty,
// and null where the target is a struct, string, number or bool. Pointer,
// slice, map and interface targets may be null.
func UnmarshalStrict(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", v)
	}
	if err := checkShape(data, rv.Elem().Type(), ""); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

var (
	unmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	rawMessageType  = reflect.TypeFor[json.RawMessage]()
)

// checkShape walks data alongside t and reports nulls and missing keys
// that json.Decoder would silently zero-fill.
func checkShape(data []byte, t reflect.Type, path string) error {
	data = bytes.TrimSpace(data)
	isNull := bytes.Equal(data, []byte("null"))

	switch t.Kind() {
	case reflect.Pointer:
		if isNull {
			return nil
		}
		return checkShape(data, t.Elem(), path)
	case reflect.Interface, reflect.Map:
		return nil
	case reflect.Slice:
		if isNull || t == rawMessageType || t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for i, item := range items {
			if err := checkShape(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	if isNull {
		return fmt.Errorf("%w at %s", ErrNullValue, displayPath(path))
	}
	// Types with their own decoding enforce their own shape.
	if t.Kind() != reflect.Struct || reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Left for the decoder to report with its own type error.
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Tag.Get("json") == "" && f.Type.Kind() == reflect.Struct {
			if err := checkShape(data, f.Type, path); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonField(f)
		if skip {
			continue
		}
		raw, ok := fields[name]
		if !ok {
			if omitEmpty || f.Type.Kind() == reflect.Pointer {
				continue
			}
			return fmt.Errorf("%w %q at %s", ErrMissingField, name, displayPath(path))
		}
		if err := checkShape(raw, f.Type, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func jsonField(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func displayPath(path string) string {
	if path == "" {
		return "top level"
	}
	return strings.TrimPrefix(path, ".")
}
