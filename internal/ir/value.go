package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface over the values canonical JSON admits:
// IRString, IRInt, IRBool, IRArray and IRObject. Floats and null have no
// IR form, so a spec that smuggles one in fails to encode.
type IRValue interface {
	irValue()
}

type (
	IRString string
	IRInt    int64 // never float64
	IRBool   bool
	IRArray  []IRValue
	IRObject map[string]IRValue
)

func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// SortedKeys returns the keys in RFC 8785 order, which compares UTF-16
// code units rather than bytes.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
	})
	return keys
}

// ToIRValue converts a JSON-encodable Go value (struct tags apply) into
// an IRValue.
func ToIRValue(v any) (IRValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("to IR: %w", err)
	}
	return UnmarshalIRValue(data)
}

// UnmarshalIRValue decodes one JSON document into an IRValue. Besides
// floats and null it rejects repeated object keys and trailing data.
// Errors name the offending path, e.g. $.args[1].min.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, "$")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, path string) (IRValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch t := tok.(type) {
	case nil:
		return nil, fmt.Errorf("%s: null is forbidden in IR", path)
	case bool:
		return IRBool(t), nil
	case string:
		return IRString(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s: floats are forbidden in IR: %s", path, t)
		}
		return IRInt(n), nil
	case json.Delim:
		if t == '[' {
			return decodeArray(dec, path)
		}
		return decodeObject(dec, path)
	default:
		return nil, fmt.Errorf("%s: unsupported token %T", path, tok)
	}
}

func decodeArray(dec *json.Decoder, path string) (IRValue, error) {
	arr := IRArray{}
	for dec.More() {
		elem, err := decodeValue(dec, path+"["+strconv.Itoa(len(arr))+"]")
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}
	if _, err := dec.Token(); err != nil { // ']'
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return arr, nil
}

func decodeObject(dec *json.Decoder, path string) (IRValue, error) {
	obj := IRObject{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		key := tok.(string)
		if _, dup := obj[key]; dup {
			return nil, fmt.Errorf("%s: duplicate key %q", path, key)
		}
		elem, err := decodeValue(dec, path+"."+key)
		if err != nil {
			return nil, err
		}
		obj[key] = elem
	}
	if _, err := dec.Token(); err != nil { // '}'
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}
