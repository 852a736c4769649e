package main

import "github.com/prometheus/common/model"

// zeroTime is what Alertmanager sends as endsAt while an alert is still firing.
const zeroTime = "0001-01-01T00:00:00Z"

const unknown = "unknown"

// Alert is a single entry of the "alerts" array, shared by both payload kinds.
type Alert map[string]any

func (a Alert) Labels() model.LabelSet {
	return labelSet(a["labels"])
}

func (a Alert) Annotations() model.LabelSet {
	return labelSet(a["annotations"])
}

// Label returns the label value, or def if the alert does not carry it.
func (a Alert) Label(name, def string) string {
	value, ok := a.Labels()[model.LabelName(name)]
	if !ok {
		return def
	}
	return string(value)
}

// Annotation reports the annotation value and whether the key exists at all.
func (a Alert) Annotation(name string) (string, bool) {
	value, ok := a.Annotations()[model.LabelName(name)]
	return string(value), ok
}

func (a Alert) Name() string {
	return a.Label("alertname", "Unknown Alert")
}

func (a Alert) Field(key string) string {
	return stringValue(a, key, unknown)
}

// HasEnded is false while endsAt holds the zero-time sentinel.
func (a Alert) HasEnded() bool {
	return a.Field("endsAt") != zeroTime
}
