package facilities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Facility is a physical outlet. Staff accounts reference it by Name.
type Facility struct {
	ID        string     `json:"-"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// MapURL links to the facility on OpenStreetMap, or "" without coordinates.
func (f Facility) MapURL() string {
	if !f.Latitude.Valid || !f.Longitude.Valid {
		return ""
	}
	lat, lon := f.Latitude.String(), f.Longitude.String()
	return "https://www.openstreetmap.org/?mlat=" + lat + "&mlon=" + lon + "#map=17/" + lat + "/" + lon
}

// Coordinate is a degree value stored as a number or numeric string.
type Coordinate struct {
	Value float64
	Valid bool
}

// ParseCoordinate reads form input.
func ParseCoordinate(s string) Coordinate {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Coordinate{}
	}
	return Coordinate{Value: v, Valid: true}
}

func (c Coordinate) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = Coordinate{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if json.Unmarshal(data, &s) == nil {
			*c = ParseCoordinate(s)
		}
		return nil
	}
	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*c = Coordinate{Value: v, Valid: true}
	}
	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(c.String()), nil
}

// Form is the facility editor payload.
type Form struct {
	Name      string `form:"name" validate:"required,max=120"`
	Address   string `form:"address" validate:"required,max=300"`
	Latitude  string `form:"latitude" validate:"required,latitude"`
	Longitude string `form:"longitude" validate:"required,longitude"`
}

func (f Form) facility() Facility {
	return Facility{
		Name:      strings.TrimSpace(f.Name),
		Address:   strings.TrimSpace(f.Address),
		Latitude:  ParseCoordinate(f.Latitude),
		Longitude: ParseCoordinate(f.Longitude),
	}
}

func formFrom(f Facility) Form {
	return Form{Name: f.Name, Address: f.Address, Latitude: f.Latitude.String(), Longitude: f.Longitude.String()}
}
