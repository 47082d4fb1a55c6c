package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// pricePointJSON is the wire form of a bar; dates travel as YYYY-MM-DD.
type pricePointJSON struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

func (p PricePoint) wire() pricePointJSON {
	return pricePointJSON{
		Symbol: p.Symbol,
		Date:   p.Date.Format(DateLayout),
		Open:   p.Open,
		High:   p.High,
		Low:    p.Low,
		Close:  p.Close,
		Volume: p.Volume,
	}
}

func (w pricePointJSON) point() (PricePoint, error) {
	date, err := time.Parse(DateLayout, w.Date)
	if err != nil {
		return PricePoint{}, fmt.Errorf("price point %s: date: %w", w.Symbol, err)
	}
	return PricePoint{
		Symbol: w.Symbol,
		Date:   date,
		Open:   w.Open,
		High:   w.High,
		Low:    w.Low,
		Close:  w.Close,
		Volume: w.Volume,
	}, nil
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var w pricePointJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	pt, err := w.point()
	if err != nil {
		return err
	}
	*p = pt
	return nil
}

// derivedPointJSON flattens the bar and its change fields into one object.
type derivedPointJSON struct {
	pricePointJSON
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"change_percent"`
}

// MarshalJSON is defined here as well; otherwise the embedded PricePoint
// method would be promoted and the change fields dropped.
func (d DerivedPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(derivedPointJSON{
		pricePointJSON: d.PricePoint.wire(),
		Change:         d.Change,
		ChangePercent:  d.ChangePercent,
	})
}

func (d *DerivedPoint) UnmarshalJSON(data []byte) error {
	var w derivedPointJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	pt, err := w.point()
	if err != nil {
		return err
	}
	*d = DerivedPoint{PricePoint: pt, Change: w.Change, ChangePercent: w.ChangePercent}
	return nil
}
