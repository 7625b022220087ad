package document

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a non-negative monetary amount. JSON input may be a number or a
// numeric string (thousands separators tolerated); anything that does not
// parse to a finite non-negative number decodes as 0. This mirrors how the
// capture form coerces user input at the boundary, so a document edited by
// hand or produced by an older client never fails to load over a bad number.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = coerceAmount(data)
	return nil
}

// MarshalJSON implements json.Marshaler. Amounts serialize as plain JSON
// numbers; integral values carry no fractional part.
func (a Amount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return []byte(strconv.FormatInt(int64(f), 10)), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// Float returns the amount as a float64.
func (a Amount) Float() float64 {
	return float64(a)
}

func coerceAmount(data []byte) Amount {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return 0
		}
		s = strings.ReplaceAll(strings.TrimSpace(str), ",", "")
		if s == "" {
			return 0
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return Amount(f)
}
