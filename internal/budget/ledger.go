package budget

import (
	"fmt"
	"sync"

	"github.com/wangyue6761/CodeReview/internal/task"
)

// Caps configures the ledger scopes. Zero means unlimited for the file
// and category scopes; the global scope is always finite.
type Caps struct {
	GlobalCalls      int
	PerFileCalls     int
	PerCategoryCalls int
}

// Validate rejects misconfigured caps before any execution starts.
func (c Caps) Validate() error {
	if c.GlobalCalls < 0 {
		return fmt.Errorf("global call budget %d is negative", c.GlobalCalls)
	}
	if c.PerFileCalls < 0 {
		return fmt.Errorf("per-file call budget %d is negative", c.PerFileCalls)
	}
	if c.PerCategoryCalls < 0 {
		return fmt.Errorf("per-category call budget %d is negative", c.PerCategoryCalls)
	}
	return nil
}

// Ledger is the single piece of mutable state shared across workers.
type Ledger struct {
	mu sync.Mutex

	caps        Caps
	global      int
	consumed    int
	perFile     map[string]int
	perCategory map[task.Category]int
}

// NewLedger creates a ledger from validated caps.
func NewLedger(caps Caps) (*Ledger, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{
		caps:        caps,
		global:      caps.GlobalCalls,
		perFile:     make(map[string]int),
		perCategory: make(map[task.Category]int),
	}, nil
}

// Reserve atomically withdraws n calls from the global budget. It fails
// without side effects if the reservation would drive the balance
// negative.
func (l *Ledger) Reserve(n int) bool {
	if n < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.global < n {
		return false
	}
	l.global -= n
	return true
}

// Consume records one sub-call against the file and category scopes.
// It is all-or-nothing: if either scope is empty neither is decremented.
func (l *Ledger) Consume(file string, cat task.Category) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.caps.PerFileCalls > 0 && l.perFile[file] >= l.caps.PerFileCalls {
		return false
	}
	if l.caps.PerCategoryCalls > 0 && l.perCategory[cat] >= l.caps.PerCategoryCalls {
		return false
	}
	if l.caps.PerFileCalls > 0 {
		l.perFile[file]++
	}
	if l.caps.PerCategoryCalls > 0 {
		l.perCategory[cat]++
	}
	l.consumed++
	return true
}

// GlobalRemaining returns the undrawn global balance.
func (l *Ledger) GlobalRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.global
}

// Consumed returns how many sub-calls have actually been made.
func (l *Ledger) Consumed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumed
}

// Exhausted reports whether the global budget is fully reserved.
func (l *Ledger) Exhausted() bool {
	return l.GlobalRemaining() == 0
}

// Snapshot is a point-in-time copy of the ledger for run metadata.
type Snapshot struct {
	GlobalBudget    int                   `json:"global_budget"`
	GlobalRemaining int                   `json:"global_remaining"`
	CallsConsumed   int                   `json:"calls_consumed"`
	Exhausted       bool                  `json:"exhausted"`
	PerFileUsed     map[string]int        `json:"per_file_used,omitempty"`
	PerCategoryUsed map[task.Category]int `json:"per_category_used,omitempty"`
}

// Snapshot copies the ledger state without blocking writers for long.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		GlobalBudget:    l.caps.GlobalCalls,
		GlobalRemaining: l.global,
		CallsConsumed:   l.consumed,
		Exhausted:       l.global == 0,
	}
	if len(l.perFile) > 0 {
		s.PerFileUsed = make(map[string]int, len(l.perFile))
		for k, v := range l.perFile {
			s.PerFileUsed[k] = v
		}
	}
	if len(l.perCategory) > 0 {
		s.PerCategoryUsed = make(map[task.Category]int, len(l.perCategory))
		for k, v := range l.perCategory {
			s.PerCategoryUsed[k] = v
		}
	}
	return s
}
