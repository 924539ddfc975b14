// Package connectjson lets connect handlers exchange plain Go structs as JSON,
// so services can be mounted without generated protobuf types.
package connectjson

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

type codec struct{}

// Name matches connect's built-in JSON codec so application/json requests use it.
func (codec) Name() string { return "json" }

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// WithCodec installs the struct JSON codec on a handler or client.
func WithCodec() connect.Option {
	return connect.WithCodec(codec{})
}

// Procedure builds the connect route for a method on service.
func Procedure(service, method string) string {
	return "/" + service + "/" + method
}
