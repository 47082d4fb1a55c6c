package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPricePoint_JSONDate(t *testing.T) {
	p := PricePoint{
		Symbol: "ACME",
		Date:   time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		Open:   100, High: 101, Low: 99, Close: 100.5, Volume: 42,
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"date":"2024-03-14"`) {
		t.Errorf("expected calendar date, got %s", b)
	}

	var back PricePoint
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != p {
		t.Errorf("expected %+v, got %+v", p, back)
	}
}

func TestDerivedPoint_JSONKeepsChange(t *testing.T) {
	change, pct := 0.5, 0.5
	d := DerivedPoint{
		PricePoint:    PricePoint{Symbol: "ACME", Date: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), Close: 100.5},
		Change:        &change,
		ChangePercent: &pct,
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["date"] != "2024-03-14" || m["change"] != 0.5 || m["change_percent"] != 0.5 || m["close"] != 100.5 {
		t.Errorf("unexpected wire form %s", b)
	}

	first, err := json.Marshal(DerivedPoint{PricePoint: d.PricePoint})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(first), `"change":null`) {
		t.Errorf("expected null change on first bar, got %s", first)
	}

	var back DerivedPoint
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Change == nil || *back.Change != 0.5 || !back.Date.Equal(d.Date) {
		t.Errorf("unexpected round trip %+v", back)
	}
}

func TestPricePoint_UnmarshalRejectsBadDate(t *testing.T) {
	var p PricePoint
	if err := json.Unmarshal([]byte(`{"symbol":"ACME","date":"14/03/2024"}`), &p); err == nil {
		t.Error("expected error for malformed date")
	}
}
