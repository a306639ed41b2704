package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	id := uuid.New()
	hexID := HexID(id)

	tests := []struct {
		name     string
		data     string
		expected Command
	}{
		{
			name:     "placeholder",
			data:     "none",
			expected: Command{Kind: CmdNone},
		},
		{
			name:     "language",
			data:     "lang_uk",
			expected: Command{Kind: CmdLang, Lang: "uk"},
		},
		{
			name:     "category approve",
			data:     "category_approve",
			expected: Command{Kind: CmdCategoryApprove},
		},
		{
			name:     "wallet cancel",
			data:     "wallet_cancel",
			expected: Command{Kind: CmdWalletCancel},
		},
		{
			name:     "category alias new",
			data:     "categoryalias_new",
			expected: Command{Kind: CmdCategoryAliasNew},
		},
		{
			name:     "wallet alias approve",
			data:     "walletalias_approve",
			expected: Command{Kind: CmdWalletAliasApprove},
		},
		{
			name:     "add wallet",
			data:     "add_wallet",
			expected: Command{Kind: CmdAddWallet},
		},
		{
			name:     "menu",
			data:     "menu_wallets",
			expected: Command{Kind: CmdMenu, Menu: "wallets"},
		},
		{
			name:     "export",
			data:     "export_transactions",
			expected: Command{Kind: CmdExport, Export: "transactions"},
		},
		{
			name: "view wallet action",
			data: "action_wv_" + hexID,
			expected: Command{
				Kind: CmdAction, Entity: PrefixWallet, Action: ActionView, ID: id,
			},
		},
		{
			name: "delete confirm action",
			data: "action_tc_" + hexID,
			expected: Command{
				Kind: CmdAction, Entity: PrefixTransaction, Action: ActionConfirm, ID: id,
			},
		},
		{
			name: "reschedule action",
			data: "action_tr_" + hexID,
			expected: Command{
				Kind: CmdAction, Entity: PrefixTransaction, Action: ActionReschedule, ID: id,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.data)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestParseCommand_Pages(t *testing.T) {
	msgToken := EncodeHexMsgID(4242)

	t.Run("jump button without page", func(t *testing.T) {
		cmd, err := ParseCommand("page_w_" + msgToken)
		assert.NoError(t, err)
		assert.Equal(t, CmdPage, cmd.Kind)
		assert.Equal(t, PrefixWallet, cmd.Entity)
		assert.Equal(t, 4242, cmd.MsgID)
		assert.False(t, cmd.HasPage)
	})

	t.Run("direct page", func(t *testing.T) {
		cmd, err := ParseCommand("page_w_" + msgToken + "_3")
		assert.NoError(t, err)
		assert.True(t, cmd.HasPage)
		assert.Equal(t, 3, cmd.Page)
	})

	t.Run("month scoped page", func(t *testing.T) {
		cmd, err := ParseCommand("page_t_" + msgToken + "_2_2026_9")
		assert.NoError(t, err)
		assert.Equal(t, PrefixTransaction, cmd.Entity)
		assert.True(t, cmd.HasPage)
		assert.Equal(t, 2, cmd.Page)
		assert.Equal(t, 2026, cmd.Year)
		assert.Equal(t, 9, cmd.Month)
	})

	t.Run("jump button keeps month context", func(t *testing.T) {
		cmd, err := ParseCommand("page_t_" + msgToken + "_0_2026_3")
		assert.NoError(t, err)
		assert.Equal(t, PrefixTransaction, cmd.Entity)
		assert.False(t, cmd.HasPage)
		assert.Equal(t, 4242, cmd.MsgID)
		assert.Equal(t, 2026, cmd.Year)
		assert.Equal(t, 3, cmd.Month)
	})

	t.Run("jump button with explicit zero page", func(t *testing.T) {
		cmd, err := ParseCommand("page_w_" + msgToken + "_0")
		assert.NoError(t, err)
		assert.Equal(t, PrefixWallet, cmd.Entity)
		assert.False(t, cmd.HasPage)
	})
}

func TestParseCommand_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"lang_",
		"menu_",
		"category_unknown",
		"action_zv_" + HexID(uuid.New()), // bad prefix
		"action_wx_" + HexID(uuid.New()), // bad verb
		"action_wv_nothex",
		"action_wv_" + HexID(uuid.New())[:16], // truncated id
		"page_w",
		"page_t_zz",
		"page_t_" + EncodeHexMsgID(1) + "_x",
		"page_t_" + EncodeHexMsgID(1) + "_-1",
		"page_t_" + EncodeHexMsgID(1) + "_1_2026_13", // month out of range
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCommand(input)
			assert.ErrorIs(t, err, ErrBadCommand)
		})
	}
}

func TestHexID_RoundTrip(t *testing.T) {
	id := uuid.New()
	parsed, err := ParseHexID(HexID(id))
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}
