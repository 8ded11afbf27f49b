// Package session keeps per-visitor state (cart, pending login, signed-in user)
// in a server-side store addressed by a signed cookie.
package session

import (
	"strconv"
)

type CartEntry struct {
	Qty int `json:"qty"`
}

// Cart maps a product id, as a decimal string, to its entry.
type Cart map[string]CartEntry

// State is everything a visitor's session carries between requests.
type State struct {
	Cart          Cart   `json:"cart"`
	LoginUsername string `json:"login_username,omitempty"`
	LoginOTP      string `json:"login_otp,omitempty"`
	UserID        uint   `json:"user_id,omitempty"`

	modified bool
}

func New() *State {
	return &State{Cart: Cart{}}
}

func cartKey(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

// AddToCart adds one unit of the product.
func (s *State) AddToCart(productID uint) {
	if s.Cart == nil {
		s.Cart = Cart{}
	}
	key := cartKey(productID)
	entry := s.Cart[key]
	entry.Qty++
	s.Cart[key] = entry
	s.modified = true
}

func (s *State) RemoveFromCart(productID uint) {
	key := cartKey(productID)
	if _, ok := s.Cart[key]; !ok {
		return
	}
	delete(s.Cart, key)
	s.modified = true
}

func (s *State) ClearCart() {
	s.Cart = Cart{}
	s.modified = true
}

// CartCount is the number of units in the cart, whatever the products.
func (s *State) CartCount() int {
	count := 0
	for _, entry := range s.Cart {
		count += entry.Qty
	}
	return count
}

// BeginLogin records a username whose credentials were accepted and the code
// sent to its owner.
func (s *State) BeginLogin(username, otp string) {
	s.LoginUsername = username
	s.LoginOTP = otp
	s.modified = true
}

func (s *State) SetOTP(otp string) {
	s.LoginOTP = otp
	s.modified = true
}

func (s *State) PendingLogin() (username, otp string) {
	return s.LoginUsername, s.LoginOTP
}

func (s *State) ClearLogin() {
	s.LoginUsername = ""
	s.LoginOTP = ""
	s.modified = true
}

func (s *State) Authenticate(userID uint) {
	s.UserID = userID
	s.modified = true
}

func (s *State) IsAuthenticated() bool {
	return s.UserID != 0
}

func (s *State) Logout() {
	s.UserID = 0
	s.modified = true
}

// Modified reports whether the state changed since it was loaded.
func (s *State) Modified() bool {
	return s.modified
}

func (s *State) markSaved() {
	s.modified = false
}
