package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLPrefix = "data:application/octet-stream;base64,"

// EncodeDataURL encodes a chunk the way the local append endpoint expects it
func EncodeDataURL(chunk []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(chunk)
}

// DecodeDataURL accepts a base64 data URL of any media type, or bare base64
func DecodeDataURL(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		meta, data, ok := strings.Cut(payload[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: not a base64 data URL", ErrInvalidPayload)
		}
		payload = data
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return decoded, nil
}
