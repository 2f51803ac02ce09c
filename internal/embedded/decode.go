package embedded

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/titanous/json5"
)

// object keeps member order so "first link of an object" stays meaningful.
type object struct {
	keys   []string
	values []any
}

// decode parses raw into a tree of *object, []any and scalars. Strict JSON is
// walked token by token in document order; anything else goes through json5
// and its object members are visited in sorted key order.
func decode(raw string) (any, error) {
	v, err := decodeOrdered(raw)
	if err == nil {
		return v, nil
	}
	var generic any
	if err5 := json5.Unmarshal([]byte(raw), &generic); err5 != nil {
		return nil, fmt.Errorf("json: %v; json5: %v", err, err5)
	}
	return fromGeneric(generic), nil
}

func decodeOrdered(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values = append(obj.values, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func fromGeneric(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := &object{keys: keys, values: make([]any, len(keys))}
		for i, k := range keys {
			obj.values[i] = fromGeneric(t[k])
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = fromGeneric(t[i])
		}
		return out
	default:
		return v
	}
}
