// Package cartstate holds the client cart as a single source of truth:
// a pure reducer over tagged actions, wrapped by a store that mirrors
// every transition to durable storage.
package cartstate

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalIDPrefix marks cart items created before the user had a
// server-side cart. Their ids never collide with server row ids.
const LocalIDPrefix = "local-"

// NewLocalID returns a fresh guest cart item id.
func NewLocalID() string {
	return LocalIDPrefix + uuid.New().String()
}

// IsLocalID reports whether id belongs to a guest-only item.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// User is the signed-in user, if any.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// ProductRef is the product data a cart item needs for display and
// total computation.
type ProductRef struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
}

// Item is one cart line.
type Item struct {
	ID       string     `json:"id"`
	Quantity int        `json:"quantity"`
	Product  ProductRef `json:"product"`
}

// State is the cart snapshot. Total and Count are derived, never set
// directly: every transition recomputes them from Items.
type State struct {
	User  *User           `json:"user"`
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// NewState returns the empty initial state.
func NewState() State {
	return State{Total: decimal.Zero}
}

// Action is a tagged cart transition.
type Action interface {
	isAction()
}

// SetUser replaces the current user (nil on logout).
type SetUser struct{ User *User }

// SetCart replaces the whole cart, e.g. after loading the server cart.
type SetCart struct{ Items []Item }

// AddItem adds a line; if the product is already present its quantity
// is incremented instead of appending a second line.
type AddItem struct{ Item Item }

// UpdateItemQuantity replaces the quantity of the line with the given id.
type UpdateItemQuantity struct {
	ID       string
	Quantity int
}

// RemoveItem deletes the line with the given id.
type RemoveItem struct{ ID string }

// ClearCart empties the cart.
type ClearCart struct{}

func (SetUser) isAction()            {}
func (SetCart) isAction()            {}
func (AddItem) isAction()            {}
func (UpdateItemQuantity) isAction() {}
func (RemoveItem) isAction()         {}
func (ClearCart) isAction()          {}

// Reduce applies an action to a state and returns the next state. It is
// pure: the input state and the action are never mutated. Unknown item
// ids in UpdateItemQuantity and RemoveItem leave the state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetUser:
		state.User = a.User
		return state

	case SetCart:
		state.Items = append([]Item(nil), a.Items...)
		return recompute(state)

	case AddItem:
		items := append([]Item(nil), state.Items...)
		merged := false
		for i := range items {
			if items[i].Product.ID == a.Item.Product.ID {
				items[i].Quantity += a.Item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, a.Item)
		}
		state.Items = items
		return recompute(state)

	case UpdateItemQuantity:
		items := append([]Item(nil), state.Items...)
		for i := range items {
			if items[i].ID == a.ID {
				items[i].Quantity = a.Quantity
				break
			}
		}
		state.Items = items
		return recompute(state)

	case RemoveItem:
		items := make([]Item, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != a.ID {
				items = append(items, item)
			}
		}
		state.Items = items
		return recompute(state)

	case ClearCart:
		state.Items = nil
		return recompute(state)

	default:
		return state
	}
}

func recompute(state State) State {
	total := decimal.Zero
	count := 0
	for _, item := range state.Items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	state.Total = total
	state.Count = count
	return state
}
