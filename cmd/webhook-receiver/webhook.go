package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/prometheus/common/model"
)

var errMalformedPayload = errors.New("malformed payload")

// WebhookPayload is a loosely-typed JSON object as pushed by Grafana or Alertmanager.
// Every accessor falls back to a default instead of failing on a missing key,
// a null, or a value of the wrong type.
type WebhookPayload map[string]any

// DecodePayload parses a request body. Any valid JSON document is accepted;
// documents that are not objects yield an empty payload.
func DecodePayload(body []byte) (WebhookPayload, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", errMalformedPayload)
	}

	var doc any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON document", errMalformedPayload)
	}

	payload, ok := doc.(map[string]any)
	if !ok {
		return WebhookPayload{}, nil
	}
	return payload, nil
}

// String returns the value under key rendered as a string, or def when it is absent or null.
func (p WebhookPayload) String(key, def string) string {
	return stringValue(p, key, def)
}

// Labels returns the string map under key, empty if absent or not an object.
func (p WebhookPayload) Labels(key string) model.LabelSet {
	return labelSet(p[key])
}

// Alerts returns the alert items of the payload. Entries that are not objects
// become empty alerts so that they still print with defaults.
func (p WebhookPayload) Alerts() []Alert {
	items, ok := p["alerts"].([]any)
	if !ok {
		return nil
	}
	alerts := make([]Alert, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		alerts = append(alerts, Alert(fields))
	}
	return alerts
}

func stringValue(fields map[string]any, key, def string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return def
	}
	return stringify(value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}

func labelSet(value any) model.LabelSet {
	fields, ok := value.(map[string]any)
	if !ok {
		return model.LabelSet{}
	}
	labels := make(model.LabelSet, len(fields))
	for k, v := range fields {
		// A null value counts as absent, like in stringValue.
		if v == nil {
			continue
		}
		labels[model.LabelName(k)] = model.LabelValue(stringify(v))
	}
	return labels
}
