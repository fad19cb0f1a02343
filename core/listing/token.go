package listing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// versionMarker is the resume position of a versioned listing.
type versionMarker struct {
	Key       string `json:"k"`
	VersionID string `json:"v,omitempty"`
}

func encodeMarker(m versionMarker) string {
	raw, _ := json.Marshal(m)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeMarker(token string) (versionMarker, error) {
	var m versionMarker
	if token == "" {
		return m, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return m, fmt.Errorf("invalid resume token: %w", err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("invalid resume token: %w", err)
	}
	return m, nil
}
