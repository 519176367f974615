package redis

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// EncodeDeck serialises a deck payload.
func EncodeDeck(records []record.Record) ([]byte, error) {
	if records == nil {
		records = []record.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode deck: %w", err)
	}
	return raw, nil
}

// DecodeDeck parses a deck payload, normalises ids and drops records that
// fail validation or repeat an id.
func DecodeDeck(raw []byte) ([]record.Record, error) {
	var records []record.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	clean, _ := record.Sanitize(records)
	return clean, nil
}

// EncodeDecision serialises a decision for the decisions list.
func EncodeDecision(d decision.Decision) ([]byte, error) {
	if !d.Kind.Valid() {
		return nil, fmt.Errorf("encode decision: invalid kind %q", d.Kind)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode decision: %w", err)
	}
	return raw, nil
}

// DecodeDecision parses one decisions list entry.
func DecodeDecision(raw []byte) (decision.Decision, error) {
	var d decision.Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return decision.Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	if !d.Kind.Valid() {
		return decision.Decision{}, fmt.Errorf("decode decision: invalid kind %q", d.Kind)
	}
	return d, nil
}
