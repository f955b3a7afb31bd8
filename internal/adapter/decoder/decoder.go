// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"github.com/mitchellh/mapstructure"

	"github.com/mergington/schooldb/domain"
)

// Decoder decodes documents into user-defined structs using the same bson
// tags the wire contract is written against.
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder].
func (d *Decoder) Decode(src any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "bson",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return domain.ErrDecode{Err: err}
	}
	if err := dec.Decode(src); err != nil {
		return domain.ErrDecode{Err: err}
	}
	return nil
}
