package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CommandKind enumerates every structured callback command the bot emits
// on inline buttons. Callback data is parsed exactly once at the boundary
// into a Command; handlers match on the kind, never on raw strings.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdLang
	CmdCategoryApprove
	CmdCategoryCancel
	CmdWalletCancel
	CmdCategoryAliasApprove
	CmdCategoryAliasNew
	CmdCategoryAliasCancel
	CmdWalletAliasApprove
	CmdWalletAliasNew
	CmdWalletAliasCancel
	CmdAddWallet
	CmdAddCategory
	CmdMenu
	CmdAction
	CmdPage
	CmdExport
	CmdNone // inert placeholder buttons
)

// ActionVerb is the single-letter action inside action_ tokens.
type ActionVerb byte

const (
	ActionView       ActionVerb = 'v'
	ActionEdit       ActionVerb = 'e'
	ActionConfirm    ActionVerb = 'c' // opens the delete confirmation
	ActionDelete     ActionVerb = 'd'
	ActionReschedule ActionVerb = 'r'
)

// EntityPrefix is the single-letter entity discriminator inside action_
// and page_ tokens.
type EntityPrefix byte

const (
	PrefixCategory    EntityPrefix = 'c'
	PrefixWallet      EntityPrefix = 'w'
	PrefixTransaction EntityPrefix = 't'
)

// Command is a parsed callback token.
type Command struct {
	Kind CommandKind

	Lang   string // lang_<code>
	Menu   string // menu_<name>
	Export string // export_<kind>

	Entity EntityPrefix // action_, page_
	Action ActionVerb   // action_
	ID     uuid.UUID    // action_

	MsgID   int // page_: message carrying the paginated menu
	Page    int // page_: requested page, 0 when absent
	HasPage bool
	Year    int // page_t only
	Month   int // page_t only
}

// ParseCommand parses raw callback data into a Command. Unrecognized or
// malformed tokens return ErrBadCommand; the turn is aborted without state
// changes.
func ParseCommand(data string) (Command, error) {
	data = strings.TrimSpace(data)
	if data == "none" {
		return Command{Kind: CmdNone}, nil
	}

	head, rest, _ := strings.Cut(data, "_")
	switch head {
	case "lang":
		if rest == "" {
			return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, data)
		}
		return Command{Kind: CmdLang, Lang: rest}, nil

	case "category":
		switch rest {
		case "approve":
			return Command{Kind: CmdCategoryApprove}, nil
		case "cancel":
			return Command{Kind: CmdCategoryCancel}, nil
		}

	case "wallet":
		if rest == "cancel" {
			return Command{Kind: CmdWalletCancel}, nil
		}

	case "categoryalias":
		switch rest {
		case "approve":
			return Command{Kind: CmdCategoryAliasApprove}, nil
		case "new":
			return Command{Kind: CmdCategoryAliasNew}, nil
		case "cancel":
			return Command{Kind: CmdCategoryAliasCancel}, nil
		}

	case "walletalias":
		switch rest {
		case "approve":
			return Command{Kind: CmdWalletAliasApprove}, nil
		case "new":
			return Command{Kind: CmdWalletAliasNew}, nil
		case "cancel":
			return Command{Kind: CmdWalletAliasCancel}, nil
		}

	case "add":
		switch rest {
		case "wallet":
			return Command{Kind: CmdAddWallet}, nil
		case "category":
			return Command{Kind: CmdAddCategory}, nil
		}

	case "menu":
		if rest != "" {
			return Command{Kind: CmdMenu, Menu: rest}, nil
		}

	case "export":
		if rest != "" {
			return Command{Kind: CmdExport, Export: rest}, nil
		}

	case "action":
		return parseAction(rest)

	case "page":
		return parsePage(rest)
	}

	return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, data)
}

// parseAction parses "<prefix><verb>_<hexId>".
func parseAction(rest string) (Command, error) {
	verbPart, idPart, ok := strings.Cut(rest, "_")
	if !ok || len(verbPart) != 2 {
		return Command{}, fmt.Errorf("%w: action %q", ErrBadCommand, rest)
	}

	prefix := EntityPrefix(verbPart[0])
	if prefix != PrefixCategory && prefix != PrefixWallet && prefix != PrefixTransaction {
		return Command{}, fmt.Errorf("%w: action prefix %q", ErrBadCommand, verbPart)
	}

	verb := ActionVerb(verbPart[1])
	switch verb {
	case ActionView, ActionEdit, ActionConfirm, ActionDelete, ActionReschedule:
	default:
		return Command{}, fmt.Errorf("%w: action verb %q", ErrBadCommand, verbPart)
	}

	id, err := ParseHexID(idPart)
	if err != nil {
		return Command{}, err
	}

	return Command{Kind: CmdAction, Entity: prefix, Action: verb, ID: id}, nil
}

// parsePage parses "<prefix>_<hexMsgId>[_<page>[_<year>_<month>]]". Page 0
// is the jump button: no concrete page is requested, but year and month
// still carry the menu's calendar context.
func parsePage(rest string) (Command, error) {
	parts := strings.Split(rest, "_")
	if len(parts) < 2 || len(parts[0]) != 1 {
		return Command{}, fmt.Errorf("%w: page %q", ErrBadCommand, rest)
	}

	prefix := EntityPrefix(parts[0][0])
	if prefix != PrefixCategory && prefix != PrefixWallet && prefix != PrefixTransaction {
		return Command{}, fmt.Errorf("%w: page prefix %q", ErrBadCommand, rest)
	}

	msgID, err := decodeHexMsgID(parts[1])
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Kind: CmdPage, Entity: prefix, MsgID: msgID}

	if len(parts) >= 3 {
		page, err := strconv.Atoi(parts[2])
		if err != nil || page < 0 {
			return Command{}, fmt.Errorf("%w: page number %q", ErrBadCommand, parts[2])
		}
		cmd.Page = page
		cmd.HasPage = page > 0
	}

	if len(parts) >= 5 {
		year, err := strconv.Atoi(parts[3])
		if err != nil {
			return Command{}, fmt.Errorf("%w: page year %q", ErrBadCommand, parts[3])
		}
		month, err := strconv.Atoi(parts[4])
		if err != nil || month < 1 || month > 12 {
			return Command{}, fmt.Errorf("%w: page month %q", ErrBadCommand, parts[4])
		}
		cmd.Year = year
		cmd.Month = month
	}

	return cmd, nil
}

// ParseHexID parses a 32-character hex entity identifier into a UUID. The
// hex length and format are validated before use.
func ParseHexID(s string) (uuid.UUID, error) {
	if len(s) != 32 {
		return uuid.Nil, fmt.Errorf("%w: id length %d", ErrBadCommand, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", ErrBadCommand, s)
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", ErrBadCommand, s)
	}
	return id, nil
}

// HexID renders a UUID in the 32-character hex form used in callback
// tokens.
func HexID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// EncodeHexMsgID renders a message ID in the hex form used in page_ tokens.
func EncodeHexMsgID(msgID int) string {
	return hex.EncodeToString([]byte(strconv.Itoa(msgID)))
}

func decodeHexMsgID(s string) (int, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: message id %q", ErrBadCommand, s)
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: message id %q", ErrBadCommand, s)
	}
	return id, nil
}
