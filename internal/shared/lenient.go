package shared

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Documents written by the ordering front-end store numbers as form strings
// and timestamps in several encodings. The types below decode those fields
// without ever failing the surrounding document.

var jsonNull = []byte("null")

// Amount is a money value that may be missing or malformed.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount wraps a decimal as a valid Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

// ParseAmount parses form input. Empty or non-numeric text yields an invalid Amount.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{Value: d, Valid: true}
}

// OrZero returns the value, or zero when the amount is invalid.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// String renders the decimal, or "" when invalid.
func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return a.Value.String()
}

// UnmarshalJSON accepts numbers and numeric strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	if data[0] == '{' {
		// extended JSON: {"$numberDecimal": "12.5"}, {"$numberLong": "12"}
		var wrapped map[string]string
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil
		}
		for _, key := range []string{"$numberDecimal", "$numberLong", "$numberInt", "$numberDouble"} {
			if v, ok := wrapped[key]; ok {
				*a = ParseAmount(v)
				return nil
			}
		}
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return nil
	}
	*a = Amount{Value: d, Valid: true}
	return nil
}

// MarshalJSON writes a bare JSON number, or null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return jsonNull, nil
	}
	return []byte(a.Value.String()), nil
}

// Timestamp is an instant that may be missing or malformed.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp wraps t as a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: !t.IsZero()}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339 strings, unix seconds or milliseconds,
// {seconds, nanoseconds} objects and extended JSON dates.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*t = parseTimestampString(s)
	case '{':
		*t = parseTimestampObject(data)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		*t = fromUnix(n)
	}
	return nil
}

// MarshalJSON writes RFC 3339 with nanoseconds, or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func parseTimestampString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: parsed, Valid: true}
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(n)
	}
	return Timestamp{}
}

func parseTimestampObject(data []byte) Timestamp {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return Timestamp{}
	}
	if raw, ok := obj["$date"]; ok {
		var inner Timestamp
		_ = inner.UnmarshalJSON(raw)
		return inner
	}
	if raw, ok := obj["$numberLong"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Timestamp{}
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Timestamp{}
		}
		return Timestamp{Time: time.UnixMilli(ms).UTC(), Valid: true}
	}
	secRaw, ok := obj["seconds"]
	if !ok {
		secRaw, ok = obj["_seconds"]
	}
	if !ok {
		return Timestamp{}
	}
	var seconds int64
	if err := json.Unmarshal(secRaw, &seconds); err != nil {
		return Timestamp{}
	}
	var nanos int64
	if raw, ok := obj["nanoseconds"]; ok {
		_ = json.Unmarshal(raw, &nanos)
	} else if raw, ok := obj["_nanoseconds"]; ok {
		_ = json.Unmarshal(raw, &nanos)
	}
	return Timestamp{Time: time.Unix(seconds, nanos).UTC(), Valid: true}
}

// Values above 1e11 are taken as milliseconds (1e11 seconds is year 5138).
func fromUnix(n float64) Timestamp {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return Timestamp{}
	}
	if n > 1e11 {
		return Timestamp{Time: time.UnixMilli(int64(n)).UTC(), Valid: true}
	}
	sec, frac := math.Modf(n)
	return Timestamp{Time: time.Unix(int64(sec), int64(frac*1e9)).UTC(), Valid: true}
}

// Quantity is a line item count. Absent, non-positive or unparseable values
// count as 1.
type Quantity struct {
	n int
}

// NewQuantity returns a Quantity holding n.
func NewQuantity(n int) Quantity {
	return Quantity{n: n}
}

// Int returns the effective count.
func (q Quantity) Int() int {
	if q.n <= 0 {
		return 1
	}
	return q.n
}

// UnmarshalJSON accepts integers, floats (truncated) and strings with a
// leading integer such as "3" or "2 phần".
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		q.n = leadingInt(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	q.n = int(f)
	return nil
}

// MarshalJSON writes the effective count.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(q.Int())), nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Text is a display string that may have been written as a number. Any other
// JSON type decodes as "".
type Text string

// UnmarshalJSON accepts strings and numbers.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*t = Text(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		*t = Text(n.String())
	}
	return nil
}
