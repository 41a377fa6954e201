// internal/game/card.go
//
// Card model and deck construction.
// Each image becomes two cards sharing a name; ids are unique per deck.

package game

import "fmt"

// Card is a single physical card on the board.
// Two cards share every Name; ID is unique within a deck.
type Card struct {
	ID      string
	Name    string
	Image   string
	Flipped bool
}

// ToggleFlip turns the card over.
func (c *Card) ToggleFlip() {
	c.Flipped = !c.Flipped
}

// Matches reports whether c and other form a pair.
func (c *Card) Matches(other *Card) bool {
	return c.Name == other.Name
}

// NewDeck duplicates every image into a pair of cards.
// Cards start face-down; order is the doubled image list, so callers shuffle.
func NewDeck(images []string) []*Card {
	n := len(images)
	cards := make([]*Card, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		cards = append(cards, &Card{
			ID:    fmt.Sprintf("c%d", i),
			Name:  fmt.Sprintf("card-%d", i%n),
			Image: images[i%n],
		})
	}
	return cards
}
