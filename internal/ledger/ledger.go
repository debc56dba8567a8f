// Package ledger holds the budget state: fixed income, fixed expenses and the
// append-only history of variable expenses, plus the derived balance.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/pocket/internal/log"
)

// Keys under which the ledger persists its state.
const (
	KeyIncome        = "income"
	KeyFixedExpenses = "fixedExpenses"
	KeyHistory       = "variableExpensesHistory"
)

// Store is the durable key/value storage the ledger loads from and saves to.
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}

// BatchStore is implemented by stores that can write several keys at once.
// The ledger prefers it so a snapshot is never half written.
type BatchStore interface {
	Store
	SaveAll(ctx context.Context, values map[string]string) error
}

// Ledger is the budget aggregate. It is not safe for concurrent use.
type Ledger struct {
	store  Store
	now    func() time.Time
	logger *log.Logger

	income        string
	fixedExpenses string
	entries       []Entry
	draft         Draft
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger.WithComponent(log.ComponentLedger) }
}

// Open loads the ledger state from store. Keys that were never saved, or
// that hold data that cannot be decoded, start from their empty defaults.
func Open(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:   store,
		now:     time.Now,
		logger:  log.Discard(),
		entries: []Entry{},
	}
	for _, opt := range opts {
		opt(l)
	}

	income, err := loadValue[Text](ctx, l, KeyIncome)
	if err != nil {
		return nil, err
	}
	fixed, err := loadValue[Text](ctx, l, KeyFixedExpenses)
	if err != nil {
		return nil, err
	}
	history, err := loadValue[[]Entry](ctx, l, KeyHistory)
	if err != nil {
		return nil, err
	}

	l.income = string(income)
	l.fixedExpenses = string(fixed)
	if history != nil {
		l.entries = history
	}
	return l, nil
}

func loadValue[T any](ctx context.Context, l *Ledger, key string) (T, error) {
	var zero T
	raw, ok, err := l.store.Load(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return zero, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		l.logger.Warn("discarding undecodable stored value",
			log.FieldOperation, log.OpLoad,
			log.FieldKey, key,
			log.FieldError, err,
		)
		return zero, nil
	}
	return v, nil
}

// FixedIncome returns the raw fixed income text.
func (l *Ledger) FixedIncome() string { return l.income }

// FixedExpenses returns the raw fixed expenses text.
func (l *Ledger) FixedExpenses() string { return l.fixedExpenses }

// Draft returns the current draft.
func (l *Ledger) Draft() Draft { return l.draft }

// Entries returns a copy of the history in insertion order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SetFixedIncome stores value as is and persists the snapshot.
func (l *Ledger) SetFixedIncome(ctx context.Context, value string) error {
	l.income = value
	return l.persist(ctx)
}

// SetFixedExpenses stores value as is and persists the snapshot.
func (l *Ledger) SetFixedExpenses(ctx context.Context, value string) error {
	l.fixedExpenses = value
	return l.persist(ctx)
}

// UpdateDraft sets one draft field. Unknown fields are ignored.
func (l *Ledger) UpdateDraft(field Field, value string) {
	switch field {
	case FieldAmount:
		l.draft.Amount = value
	case FieldDescription:
		l.draft.Description = value
	}
}

// CommitDraft appends the draft to the history when both of its fields are
// filled in. An incomplete draft is left untouched and ok is false. The
// returned error only ever comes from the store; the entry is kept in memory
// even when saving fails.
func (l *Ledger) CommitDraft(ctx context.Context) (entry Entry, ok bool, err error) {
	if !l.draft.complete() {
		return Entry{}, false, nil
	}

	entry = Entry{
		Amount:      Text(l.draft.Amount),
		Description: Text(l.draft.Description),
		ID:          l.nextID(),
	}
	l.entries = append(l.entries, entry)
	l.draft = Draft{}

	l.logger.Debug("committed entry",
		log.FieldOperation, log.OpCommit,
		log.FieldEntryID, entry.ID,
		log.FieldAmount, string(entry.Amount),
	)
	return entry, true, l.persist(ctx)
}

// nextID stamps a new entry with the clock in milliseconds. Two commits in
// the same millisecond, or a clock that moved backwards, would repeat or
// reorder ids, so the id is bumped past the newest one on record.
func (l *Ledger) nextID() int64 {
	id := l.now().UnixMilli()
	for _, e := range l.entries {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id
}

// AvailableBalance is fixed income minus fixed expenses minus every variable
// expense, with unparseable values counting as zero.
func (l *Ledger) AvailableBalance() float64 {
	return Number(l.income) - Number(l.fixedExpenses) - total(l.entries)
}

// VariableTotal is the sum of all variable expenses.
func (l *Ledger) VariableTotal() float64 {
	return total(l.entries)
}

// EntriesDescending returns the history newest first without touching the
// stored order.
func (l *Ledger) EntriesDescending() []Entry {
	return sortDescending(l.entries)
}

// persist writes all three keys.
func (l *Ledger) persist(ctx context.Context) error {
	values, err := l.encode()
	if err != nil {
		return err
	}

	if bs, ok := l.store.(BatchStore); ok {
		if err := bs.SaveAll(ctx, values); err != nil {
			return fmt.Errorf("saving ledger: %w", err)
		}
		return nil
	}

	for _, key := range []string{KeyIncome, KeyFixedExpenses, KeyHistory} {
		if err := l.store.Save(ctx, key, values[key]); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}

func (l *Ledger) encode() (map[string]string, error) {
	income, err := json.Marshal(l.income)
	if err != nil {
		return nil, err
	}
	fixed, err := json.Marshal(l.fixedExpenses)
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(l.entries)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return map[string]string{
		KeyIncome:        string(income),
		KeyFixedExpenses: string(fixed),
		KeyHistory:       string(history),
	}, nil
}
