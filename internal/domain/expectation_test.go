package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExpectation_StateTransitions(t *testing.T) {
	e := NewExpectation()
	assert.True(t, e.IsIdle())
	assert.True(t, e.Valid())

	pending := PendingTransaction{
		Amount:   decimal.RequireFromString("-10"),
		Category: "groceries",
		Wallet:   "cash",
	}

	e.SetPending(pending)
	e.SetExpectation(ExpectNewCategory, ExpectData{Name: "groceries"})
	assert.False(t, e.IsIdle())
	assert.True(t, e.Valid())

	// Finishing a sub-flow keeps the pending tuple so registration can
	// resume.
	e.ClearExpectation()
	assert.True(t, e.IsIdle())
	assert.NotNil(t, e.Pending)
	assert.False(t, e.Valid())

	e.ClearPending()
	assert.True(t, e.Valid())

	e.SetPending(pending)
	e.SetExpectation(ExpectNewWallet, ExpectData{Name: "cash"})
	e.Reset()
	assert.True(t, e.IsIdle())
	assert.Nil(t, e.Pending)
	assert.Zero(t, e.Message)
	assert.True(t, e.Valid())
}

func TestExpectation_JSONRoundTrip(t *testing.T) {
	e := NewExpectation()
	e.SetPending(PendingTransaction{
		Amount:   decimal.RequireFromString("-12.50"),
		Category: "groceries",
		Wallet:   "cash",
		Comment:  "lunch",
	})
	e.SetExpectation(ExpectNewWalletAlias, ExpectData{
		Typed:    "csh",
		EntityID: "00000000000000000000000000000000",
		Name:     "cash",
	})
	e.Message = 77

	raw, err := json.Marshal(e)
	assert.NoError(t, err)

	var decoded Expectation
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ExpectNewWalletAlias, decoded.Expect.Type)
	assert.Equal(t, "csh", decoded.Expect.Data.Typed)
	assert.Equal(t, 77, decoded.Message)
	if assert.NotNil(t, decoded.Pending) {
		assert.True(t, decoded.Pending.Amount.Equal(decimal.RequireFromString("-12.50")))
		assert.Equal(t, "lunch", decoded.Pending.Comment)
	}
}
