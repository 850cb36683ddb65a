package server

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// StableJSONHash generates a stable hash from a JSON-marshalable value.
func StableJSONHash(v interface{}) (string, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	hash := xxhash.Sum64(jsonData)
	return "\"" + strconv.FormatUint(hash, 10) + "\"", nil
}
