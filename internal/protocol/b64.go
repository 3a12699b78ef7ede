package protocol

import (
	"encoding/base64"

	"github.com/nielsreijers/prodlog/internal/logger"
)

// Arguments reach these decoders already split on ':' and cut at the ';'
// terminator with no escaping; that is safe only because the base64
// alphabet contains neither byte, and any future verb whose arguments are
// not base64 would have to avoid them too.

// decodeString base64-decodes data into a UTF-8 string. A decode failure is
// logged and the raw argument is returned unchanged, matching the
// original's "shouldn't happen, but if it does" fallback.
func decodeString(data string) string {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		logger.Warn("base64 decode failed", "error", err)
		return data
	}
	return string(raw)
}

// decodeBytes base64-decodes data into a raw byte slice, used for file
// contents rather than text arguments.
func decodeBytes(data string) []byte {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		logger.Warn("base64 decode failed", "error", err)
		return []byte(data)
	}
	return raw
}
