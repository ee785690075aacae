package serialization

import (
	"context"
	"encoding/json"
	"iter"
)

// Serializer decodes one stored payload into v, a non-nil pointer.
type Serializer interface {
	Deserialize(payload string, v any) error
}

// JSON is the Serializer for payloads stored as JSON text.
type JSON struct{}

// Deserialize implements Serializer.
func (JSON) Deserialize(payload string, v any) error {
	return json.Unmarshal([]byte(payload), v)
}

// Source enumerates payloads in order, calling yield for each one until
// yield returns false. It may block on I/O and should return promptly once
// ctx is done. A non-nil error is a fault in enumeration.
type Source func(ctx context.Context, yield func(payload string) bool) error

// SliceSource returns a Source over fixed payloads.
func SliceSource(payloads ...string) Source {
	return func(ctx context.Context, yield func(string) bool) error {
		for _, p := range payloads {
			if !yield(p) {
				break
			}
		}
		return nil
	}
}

// SeqSource adapts an iterator to a Source.
func SeqSource(seq iter.Seq[string]) Source {
	return func(ctx context.Context, yield func(string) bool) error {
		for p := range seq {
			if !yield(p) {
				break
			}
		}
		return nil
	}
}
