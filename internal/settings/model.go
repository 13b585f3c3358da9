package settings

import (
	"strings"
	"time"
)

// DocumentID is the single settings document.
const DocumentID = "general"

// Weekdays in display order. Keys match the stored businessHours map.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayLabels = map[string]string{
	"monday":    "Thứ hai",
	"tuesday":   "Thứ ba",
	"wednesday": "Thứ tư",
	"thursday":  "Thứ năm",
	"friday":    "Thứ sáu",
	"saturday":  "Thứ bảy",
	"sunday":    "Chủ nhật",
}

// WeekdayLabel returns the Vietnamese day name.
func WeekdayLabel(day string) string {
	if l, ok := weekdayLabels[day]; ok {
		return l
	}
	return day
}

// DayHours is the opening window for one weekday, as HH:MM strings.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

// Settings is the Settings/general document.
type Settings struct {
	BusinessHours map[string]DayHours `json:"businessHours"`
	ContactInfo   ContactInfo         `json:"contactInfo"`
	SocialMedia   SocialMedia         `json:"socialMedia"`
}

// Defaults opens every day from 08:00 to 20:00.
func Defaults() Settings {
	hours := make(map[string]DayHours, len(Weekdays))
	for _, d := range Weekdays {
		hours[d] = DayHours{Open: "08:00", Close: "20:00"}
	}
	return Settings{BusinessHours: hours}
}

// withDefaults fills weekdays missing from a stored document.
func (s Settings) withDefaults() Settings {
	base := Defaults()
	if s.BusinessHours == nil {
		s.BusinessHours = base.BusinessHours
		return s
	}
	for _, d := range Weekdays {
		if _, ok := s.BusinessHours[d]; !ok {
			s.BusinessHours[d] = base.BusinessHours[d]
		}
	}
	return s
}

// Day is a template row.
type Day struct {
	Key   string
	Label string
	Hours DayHours
}

// Days lists business hours in weekday order.
func (s Settings) Days() []Day {
	out := make([]Day, 0, len(Weekdays))
	for _, d := range Weekdays {
		out = append(out, Day{Key: d, Label: WeekdayLabel(d), Hours: s.BusinessHours[d]})
	}
	return out
}

func (s Settings) trimmed() Settings {
	hours := make(map[string]DayHours, len(s.BusinessHours))
	for k, h := range s.BusinessHours {
		hours[k] = DayHours{Open: normalizeClock(h.Open), Close: normalizeClock(h.Close), Closed: h.Closed}
	}
	s.BusinessHours = hours
	s.ContactInfo = ContactInfo{
		Phone:   strings.TrimSpace(s.ContactInfo.Phone),
		Email:   strings.TrimSpace(s.ContactInfo.Email),
		Address: strings.TrimSpace(s.ContactInfo.Address),
	}
	s.SocialMedia = SocialMedia{
		Facebook:  strings.TrimSpace(s.SocialMedia.Facebook),
		Instagram: strings.TrimSpace(s.SocialMedia.Instagram),
		Twitter:   strings.TrimSpace(s.SocialMedia.Twitter),
	}
	return s
}

// normalizeClock zero pads valid times ("9:05" becomes "09:05") and leaves
// anything else for validation to reject.
func normalizeClock(v string) string {
	v = strings.TrimSpace(v)
	t, err := time.Parse("15:04", v)
	if err != nil {
		return v
	}
	return t.Format("15:04")
}
