package core

// Direction indicates which party contributes the items of a trade offer.
type Direction int

const (
	// BotToUser sends items from the bot's own inventory to the counterparty.
	BotToUser Direction = iota
	// UserToBot requests items from the counterparty's inventory.
	UserToBot
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case BotToUser:
		return "bot_to_user"
	case UserToBot:
		return "user_to_bot"
	default:
		return "unknown"
	}
}

// OfferSide identifies which side of an offer a set of items occupies.
type OfferSide int

const (
	// SideBot places items on the bot's side of the offer.
	SideBot OfferSide = iota
	// SideCounterparty places items on the counterparty's side of the offer.
	SideCounterparty
)

// OfferState is the lifecycle state of a trade offer.
//
// Transitions:
//
//	Building -> Sent | PendingConfirmation | Failed
//	PendingConfirmation -> Finalized | Failed
//
// Sent, Finalized and Failed are terminal for this core; a retry is a new
// TradeOffer, never a re-run of an existing one.
type OfferState int

const (
	// StateBuilding is the initial state before dispatch.
	StateBuilding OfferState = iota
	// StateSent means the offer was delivered and needs no secondary authorization.
	StateSent
	// StatePendingConfirmation means the remote network holds the offer until a
	// confirmation code exchange completes.
	StatePendingConfirmation
	// StateFinalized means a pending offer was confirmed successfully.
	StateFinalized
	// StateFailed is the terminal error state.
	StateFailed
)

// String returns the string representation of the offer state.
func (s OfferState) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateSent:
		return "sent"
	case StatePendingConfirmation:
		return "pending_confirmation"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TradeOffer tracks one trade attempt from construction to a terminal state.
// OfferID is assigned by the remote network once the offer is accepted for
// delivery and is empty before that point.
type TradeOffer struct {
	AttemptID          string
	OfferID            string
	Direction          Direction
	State              OfferState
	RequestedItemNames []string
	ResolvedItems      []InventoryItem
	Message            string
}
