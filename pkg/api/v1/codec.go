// Package apiv1 defines the messages of the codecanvas.v1 RPC services.
//
// Messages are plain structs exchanged as JSON. Field names and getters
// follow the shape of generated protobuf code so handlers read the same.
package apiv1

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// CodecName is the Connect codec name, mapped to application/json.
const CodecName = "json"

// Codec marshals messages with sonic. It replaces Connect's protobuf-only
// JSON codec for the codecanvas.v1 services.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(message any) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", message, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, message); err != nil {
		return fmt.Errorf("unmarshal %T: %w", message, err)
	}
	return nil
}
