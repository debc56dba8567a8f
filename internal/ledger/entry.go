package ledger

import (
	"sort"
	"time"
)

// Entry is one committed variable expense. The JSON shape matches the
// persisted history records, including the "text" name of the description.
type Entry struct {
	Amount      Text  `json:"amount"`
	Description Text  `json:"text"`
	ID          int64 `json:"id"`
}

// CreatedAt returns the creation time encoded in the entry id.
func (e Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.ID)
}

// Field names a draft input.
type Field string

// Draft fields.
const (
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
)

// Draft is the in-progress, uncommitted expense.
type Draft struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// complete reports whether both fields carry text.
func (d Draft) complete() bool {
	return d.Amount != "" && d.Description != ""
}

// sortDescending returns a copy of entries ordered by id, newest first.
// Entries that share an id keep their insertion order.
func sortDescending(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	return out
}

// total sums the numeric value of every entry amount.
func total(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Amount.Number()
	}
	return sum
}
