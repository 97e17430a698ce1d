package store

import (
	"fmt"
	"time"

	"github.com/dshills/codeoverview/internal/overview"
)

// Firestore encodes every field as a tagged union keyed by its type.
type value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ArrayValue     *arrayValue `json:"arrayValue,omitempty"`
	MapValue       *mapValue   `json:"mapValue,omitempty"`
}

type arrayValue struct {
	Values []value `json:"values,omitempty"`
}

type mapValue struct {
	Fields map[string]value `json:"fields,omitempty"`
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields"`
}

func stringValue(s string) value {
	return value{StringValue: &s}
}

func timestampValue(t time.Time) value {
	s := t.UTC().Format(time.RFC3339Nano)
	return value{TimestampValue: &s}
}

func turnsValue(turns []overview.Turn) value {
	arr := &arrayValue{Values: make([]value, 0, len(turns))}
	for _, t := range turns {
		arr.Values = append(arr.Values, value{MapValue: &mapValue{Fields: map[string]value{
			"user": stringValue(t.User),
			"text": stringValue(t.Text),
		}}})
	}
	return value{ArrayValue: arr}
}

func (v value) str() string {
	if v.StringValue == nil {
		return ""
	}
	return *v.StringValue
}

func decodeDocument(d document) (overview.Document, error) {
	doc := overview.Document{
		ID:   d.Fields["overview_id"].str(),
		Text: d.Fields["text"].str(),
	}

	if ts := d.Fields["timestamp"].TimestampValue; ts != nil {
		t, err := time.Parse(time.RFC3339Nano, *ts)
		if err != nil {
			return overview.Document{}, fmt.Errorf("timestamp: %w", err)
		}
		doc.Timestamp = t
	}

	if arr := d.Fields["chatHistory"].ArrayValue; arr != nil {
		doc.ChatHistory = make([]overview.Turn, 0, len(arr.Values))
		for i, v := range arr.Values {
			if v.MapValue == nil {
				return overview.Document{}, fmt.Errorf("chatHistory[%d]: not a map", i)
			}
			doc.ChatHistory = append(doc.ChatHistory, overview.Turn{
				User: v.MapValue.Fields["user"].str(),
				Text: v.MapValue.Fields["text"].str(),
			})
		}
	}
	return doc, nil
}
