package domain

import (
	"github.com/shopspring/decimal"
)

// ExpectType marks what kind of reply is awaited from the user next.
type ExpectType string

const (
	ExpectNone                  ExpectType = "none"
	ExpectNewCategory           ExpectType = "new_category"
	ExpectNewWallet             ExpectType = "new_wallet"
	ExpectEditCategory          ExpectType = "edit_category"
	ExpectEditWallet            ExpectType = "edit_wallet"
	ExpectEditTransaction       ExpectType = "edit_transaction"
	ExpectRescheduleTransaction ExpectType = "reschedule_transaction"
	ExpectNewCategoryAlias      ExpectType = "new_category_alias"
	ExpectNewWalletAlias        ExpectType = "new_wallet_alias"
	ExpectPage                  ExpectType = "page"
)

// ExpectData is the payload attached to an expectation. Which fields are
// meaningful depends on the expectation type:
//
//	new_category, new_wallet      Name (proposed entity name, may be empty
//	                              for explicit add flows)
//	edit_*, reschedule_*          EntityID (hex UUID of the edited entity)
//	new_*_alias                   Typed (text the user originally sent) and
//	                              EntityID (hex UUID of the fuzzy match)
//	page                          Kind, Page, Year, Month, MsgID
type ExpectData struct {
	Name     string     `json:"name,omitempty"`
	EntityID string     `json:"entity_id,omitempty"`
	Typed    string     `json:"typed,omitempty"`
	Kind     EntityKind `json:"kind,omitempty"`
	Page     int        `json:"page,omitempty"`
	Year     int        `json:"year,omitempty"`
	Month    int        `json:"month,omitempty"`
	MsgID    int        `json:"msg_id,omitempty"`
}

// Expect is the tagged state of the conversation state machine.
type Expect struct {
	Type ExpectType `json:"type"`
	Data ExpectData `json:"data,omitempty"`
}

// PendingTransaction is a parsed-but-not-yet-committed transaction tuple,
// kept until every referenced entity is resolved or created.
type PendingTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Wallet   string          `json:"wallet"`
	Comment  string          `json:"comment,omitempty"`
}

// Expectation is the per-user durable conversation state. It is persisted
// as a whole on every turn before the reply goes out.
type Expectation struct {
	Expect  Expect              `json:"expect"`
	Pending *PendingTransaction `json:"transaction,omitempty"`
	Message int                 `json:"message,omitempty"`
}

// NewExpectation returns the idle state.
func NewExpectation() Expectation {
	return Expectation{Expect: Expect{Type: ExpectNone}}
}

// IsIdle reports whether no reply is currently awaited.
func (e *Expectation) IsIdle() bool {
	return e.Expect.Type == "" || e.Expect.Type == ExpectNone
}

// SetExpectation sets the awaited reply type with its payload.
func (e *Expectation) SetExpectation(t ExpectType, data ExpectData) {
	e.Expect = Expect{Type: t, Data: data}
}

// ClearExpectation drops the awaited reply but keeps the pending
// transaction. A finished sub-flow uses the surviving pending transaction
// to know it must resume registration.
func (e *Expectation) ClearExpectation() {
	e.Expect = Expect{Type: ExpectNone}
}

// SetPending stores the in-flight transaction tuple.
func (e *Expectation) SetPending(p PendingTransaction) {
	e.Pending = &p
}

// ClearPending drops the in-flight transaction tuple.
func (e *Expectation) ClearPending() {
	e.Pending = nil
}

// Reset returns the state to idle and discards the pending transaction.
// Commands always interrupt sub-flows through this.
func (e *Expectation) Reset() {
	e.Expect = Expect{Type: ExpectNone}
	e.Pending = nil
	e.Message = 0
}

// Valid checks the state invariant: an idle expectation implies there is no
// pending transaction.
func (e *Expectation) Valid() bool {
	return !e.IsIdle() || e.Pending == nil
}
