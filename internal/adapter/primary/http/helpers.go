package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

const maxBodyBytes = 1 << 20

// respondJSON writes a JSON response with the given status code and payload.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are not recoverable at this point, so we ignore the return.
	_ = json.NewEncoder(w).Encode(data)
}

// readNotification reads the request body once and decodes it as JSON or as
// a URL-encoded form. The raw body is returned for diagnostics. Bodies over
// maxBodyBytes are rejected rather than truncated.
func readNotification(w http.ResponseWriter, r *http.Request) (entity.Notification, []byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("reading request body: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		n, err := decodeJSON(raw)
		return n, raw, err
	case "application/x-www-form-urlencoded":
		n, err := decodeForm(raw)
		return n, raw, err
	}

	// Unknown or missing content type: accept whichever decodes.
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		n, err := decodeJSON(raw)
		return n, raw, err
	}
	n, err := decodeForm(raw)
	return n, raw, err
}

func decodeJSON(raw []byte) (entity.Notification, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding json body: %w", err)
	}

	n := make(entity.Notification, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case string:
			n[k] = val
		case json.Number:
			n[k] = val.String()
		case bool:
			n[k] = strconv.FormatBool(val)
		}
	}
	return n, nil
}

func decodeForm(raw []byte) (entity.Notification, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding form body: %w", err)
	}
	return fromValues(values), nil
}

// fromValues keeps the first value of every key.
func fromValues(values url.Values) entity.Notification {
	n := make(entity.Notification, len(values))
	for k, v := range values {
		if len(v) > 0 {
			n[k] = v[0]
		}
	}
	return n
}
