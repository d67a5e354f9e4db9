package domain

import "time"

// CartSnapshot is the immutable copy of a cart taken at the instant a checkout
// begins. Unit prices are captured here; later catalog edits do not affect an
// attempt in flight.
type CartSnapshot struct {
	UserID  string
	Items   []SnapshotItem
	TakenAt time.Time
}

type SnapshotItem struct {
	ProductID      string
	Name           string
	Image          string
	Quantity       int
	UnitPriceCents int64
}
