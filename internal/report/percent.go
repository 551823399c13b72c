package report

import "encoding/json"

// Percent is a percentage that may be undefined. A zero denominator never
// produces 0% or NaN; it produces an invalid Percent which renders as "--".
type Percent struct {
	Value float64
	Valid bool
}

// SafeDivide returns num/den as a percentage. den == 0 yields an invalid
// Percent. Every category, tier and total percentage in this package goes
// through here.
func SafeDivide(num, den float64) Percent {
	if den == 0 {
		return Percent{}
	}
	return Percent{Value: num / den * 100, Valid: true}
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	p.Valid = true
	return json.Unmarshal(data, &p.Value)
}
