package accessor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/structdb/internal/schema"
)

// Document is a decoded JSON object.
type Document = map[string]any

// DecodeDocument decodes a JSON object, keeping numbers as json.Number so
// integers survive without a float round trip.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode document: not a JSON object")
	}
	return doc, nil
}

// DecodeDocuments decodes a stream of JSON objects. A top-level array is
// flattened into its elements.
func DecodeDocuments(data []byte) ([]Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []Document
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", len(docs), err)
		}

		items := []any{v}
		if arr, ok := v.([]any); ok {
			items = arr
		}
		for _, item := range items {
			doc, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode document %d: %T is not a JSON object", len(docs), item)
			}
			docs = append(docs, doc)
		}
	}
}

// Index reads one dot-delimited member path from a Document. Paths that
// cross arrays return one value per element.
type Index struct {
	path      string
	segments  []string
	typeClass schema.TypeClass
	mode      schema.UniqueMode
}

var _ schema.IndexAccessor = (*Index)(nil)

// NewIndex creates an index accessor for path.
func NewIndex(path string, tc schema.TypeClass, mode schema.UniqueMode) *Index {
	return &Index{
		path:      path,
		segments:  strings.Split(path, "."),
		typeClass: tc,
		mode:      mode,
	}
}

func (a *Index) Path() string                 { return a.path }
func (a *Index) TypeClass() schema.TypeClass   { return a.typeClass }
func (a *Index) UniqueMode() schema.UniqueMode { return a.mode }

// Values implements schema.IndexAccessor. Missing members and JSON nulls
// yield no values.
func (a *Index) Values(doc any) ([]any, error) {
	raw := collect(doc, a.segments, nil)
	values := make([]any, 0, len(raw))
	for _, v := range raw {
		c, err := Coerce(a.typeClass, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.path, err)
		}
		values = append(values, c)
	}
	return values, nil
}

// collect walks segments below v, flattening arrays at every level.
func collect(v any, segments []string, out []any) []any {
	switch node := v.(type) {
	case nil:
		return out
	case []any:
		for _, elem := range node {
			out = collect(elem, segments, out)
		}
		return out
	}

	if len(segments) == 0 {
		return append(out, v)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return out
	}
	return collect(obj[segments[0]], segments[1:], out)
}

// ID reads and assigns the structure id of a Document.
type ID struct {
	path     string
	segments []string
}

var (
	_ schema.IdAccessor = (*ID)(nil)
	_ schema.IDAssigner = (*ID)(nil)
)

// NewID creates an id accessor for path.
func NewID(path string) *ID {
	return &ID{path: path, segments: strings.Split(path, ".")}
}

func (a *ID) Path() string { return a.path }

// ID implements schema.IdAccessor.
func (a *ID) ID(doc any) (schema.StructureID, error) {
	values := collect(doc, a.segments, nil)
	switch len(values) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", fmt.Errorf("id %s: %d values, expected one", a.path, len(values))
	}

	switch id := values[0].(type) {
	case string:
		return schema.StructureID(id), nil
	case json.Number:
		return schema.StructureID(id.String()), nil
	default:
		return "", fmt.Errorf("id %s: unsupported type %T", a.path, values[0])
	}
}

// AssignID implements schema.IDAssigner, creating intermediate objects as
// needed.
func (a *ID) AssignID(doc any, id schema.StructureID) error {
	obj, ok := doc.(map[string]any)
	if !ok {
		return fmt.Errorf("id %s: document is %T, not an object", a.path, doc)
	}
	for _, seg := range a.segments[:len(a.segments)-1] {
		child, ok := obj[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			obj[seg] = child
		}
		obj = child
	}
	obj[a.segments[len(a.segments)-1]] = id.String()
	return nil
}
