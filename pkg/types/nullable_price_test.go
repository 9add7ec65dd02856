package types

import (
	"encoding/json"
	"testing"
)

func TestNullablePriceUnmarshal(t *testing.T) {
	type payload struct {
		Price NullablePrice `json:"price"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"price": 2.5}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.Price.Valid || got.Price.Value.IsNull() {
		t.Fatalf("expected valid price, got %+v", got.Price)
	}
	if got.Price.Value.String() != "2.50" {
		t.Fatalf("unexpected price %s", got.Price.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"price": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Price.Valid || !got.Price.Value.IsNull() {
		t.Fatalf("expected null to be present but empty, got %+v", got.Price)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.Price.Valid {
		t.Fatalf("expected missing field to be invalid, got %+v", got.Price)
	}
}
