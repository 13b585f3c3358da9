package orders

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew        Status = "new"
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Vocabulary lists every stored state in lifecycle order.
var Vocabulary = []Status{
	StatusNew,
	StatusPending,
	StatusPreparing,
	StatusDelivering,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

// DisplayVocabulary is the status chart order. Unknown states fall into the
// first entry.
var DisplayVocabulary = []Status{
	StatusNew,
	StatusPending,
	StatusPreparing,
	StatusDelivering,
	StatusCompleted,
	StatusCancelled,
}

// RevenueStatuses are the states whose totals count as revenue.
var RevenueStatuses = []Status{StatusDelivered, StatusCompleted}

// AliasTable folds raw states into display states.
type AliasTable map[Status]Status

// FulfilledAliases treats delivered and completed as one terminal state.
var FulfilledAliases = AliasTable{StatusDelivered: StatusCompleted}

// Resolve returns the display state for s.
func (a AliasTable) Resolve(s Status) Status {
	if to, ok := a[s]; ok {
		return to
	}
	return s
}

var spellings = map[string]Status{
	"canceled": StatusCancelled,
	"cancel":   StatusCancelled,
	"done":     StatusCompleted,
	"complete": StatusCompleted,
	"shipping": StatusDelivering,
	"prepare":  StatusPreparing,
}

// ParseStatus normalises case and alternative spellings. The boolean is
// false when the value is not part of Vocabulary; the returned Status then
// carries the normalised raw text.
func ParseStatus(raw string) (Status, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := spellings[v]; ok {
		return s, true
	}
	s := Status(v)
	return s, s.Known()
}

// Known reports whether s is part of Vocabulary.
func (s Status) Known() bool {
	for _, v := range Vocabulary {
		if v == s {
			return true
		}
	}
	return false
}

// Fulfilled reports whether the order completed successfully.
func (s Status) Fulfilled() bool {
	return s == StatusDelivered || s == StatusCompleted
}

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	return s.Fulfilled() || s == StatusCancelled
}

// Label is the operator facing name.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "Mới"
	case StatusPending:
		return "Chưa thanh toán"
	case StatusPreparing:
		return "Đang chuẩn bị"
	case StatusDelivering:
		return "Đang giao"
	case StatusDelivered:
		return "Đã giao"
	case StatusCompleted:
		return "Đã hoàn thành"
	case StatusCancelled:
		return "Đã hủy"
	case "":
		return "Mới"
	default:
		return strings.ToUpper(string(s))
	}
}

// BadgeClass is the CSS modifier used by status badges.
func (s Status) BadgeClass() string {
	switch s {
	case StatusDelivered, StatusCompleted:
		return "badge-success"
	case StatusPending:
		return "badge-warning"
	case StatusPreparing, StatusDelivering:
		return "badge-info"
	case StatusCancelled:
		return "badge-danger"
	default:
		return "badge-primary"
	}
}

// UnmarshalJSON normalises the stored text and never fails; non-string
// values decode to the empty status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = ""
		return nil
	}
	*s, _ = ParseStatus(raw)
	return nil
}
