// Package jsontree models JSON documents as a closed set of node variants
// (object, array, scalar) so structured records can be traversed and rewritten
// without dynamic-type inspection. Object key order is preserved across a
// parse/encode round trip, keeping rewritten records byte-stable.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is a JSON value. The implementations form a closed set: Object, Array,
// String, Number, Bool, Null.
type Node interface {
	node()
}

// Object is a JSON object with insertion-ordered keys.
type Object struct {
	keys   []string
	fields map[string]Node
}

// Array is a JSON array.
type Array struct {
	Items []Node
}

// String is a JSON string scalar.
type String struct {
	Value string
}

// Number is a JSON number scalar, kept in its source representation.
type Number struct {
	Value json.Number
}

// Bool is a JSON boolean scalar.
type Bool struct {
	Value bool
}

// Null is the JSON null scalar.
type Null struct{}

func (*Object) node() {}
func (*Array) node()  {}
func (*String) node() {}
func (*Number) node() {}
func (*Bool) node()   {}
func (*Null) node()   {}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Node)}
}

// Set stores a field, appending the key to the order if it is new.
func (o *Object) Set(key string, value Node) {
	if o.fields == nil {
		o.fields = make(map[string]Node)
	}
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = value
}

// Get returns the field value for key.
func (o *Object) Get(key string) (Node, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// GetString returns the string value of a field, if it is a string scalar.
func (o *Object) GetString(key string) (string, bool) {
	if s, ok := o.fields[key].(*String); ok {
		return s.Value, true
	}
	return "", false
}

// GetArray returns the array value of a field, if it is an array.
func (o *Object) GetArray(key string) (*Array, bool) {
	if a, ok := o.fields[key].(*Array); ok {
		return a, true
	}
	return nil, false
}

// GetInt returns the integer value of a field, if it is a number scalar.
func (o *Object) GetInt(key string) (int, bool) {
	n, ok := o.fields[key].(*Number)
	if !ok {
		return 0, false
	}
	i, err := n.Value.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// Parse decodes JSON into a node tree, preserving object key order.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	// Reject trailing non-whitespace content.
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("unexpected trailing content")
	}
	return root, nil
}

func parseValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				value, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, value)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := &Array{}
			for dec.More() {
				value, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, value)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return &String{Value: t}, nil
	case json.Number:
		return &Number{Value: t}, nil
	case bool:
		return &Bool{Value: t}, nil
	case nil:
		return &Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// Encode serializes a node tree with two-space indentation and without HTML
// escaping, so embedded URLs stay readable.
func Encode(root Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, root, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, n Node, depth int) error {
	switch v := n.(type) {
	case *Object:
		if v.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			writeIndent(buf, depth+1)
			if err := encodeString(buf, key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encodeValue(buf, v.fields[key], depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte('}')
		return nil
	case *Array:
		if len(v.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			writeIndent(buf, depth+1)
			if err := encodeValue(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte(']')
		return nil
	case *String:
		return encodeString(buf, v.Value)
	case *Number:
		if v.Value == "" {
			buf.WriteByte('0')
			return nil
		}
		buf.WriteString(string(v.Value))
		return nil
	case *Bool:
		if v.Value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case *Null:
		buf.WriteString("null")
		return nil
	default:
		return fmt.Errorf("unknown node type %T", n)
	}
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline; strip it.
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

// RewriteStrings applies fn to every string scalar in the tree, replacing the
// value where fn reports a change. It returns the number of replacements.
func RewriteStrings(root Node, fn func(string) (string, bool)) int {
	count := 0
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Object:
			for _, key := range v.keys {
				if s, ok := v.fields[key].(*String); ok {
					if replaced, changed := fn(s.Value); changed {
						s.Value = replaced
						count++
					}
					continue
				}
				walk(v.fields[key])
			}
		case *Array:
			for _, item := range v.Items {
				if s, ok := item.(*String); ok {
					if replaced, changed := fn(s.Value); changed {
						s.Value = replaced
						count++
					}
					continue
				}
				walk(item)
			}
		}
	}
	walk(root)
	return count
}
