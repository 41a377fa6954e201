// internal/game/board.go
//
// Board owns the ordered deck and its rendered layout.
// Rendering fills an ordered list of card nodes keyed by card ID; clicks are
// delegated through a single registered callback and resolved against those
// nodes, so an ID that was never rendered behaves like a click outside the grid.

package game

import (
	"math"
	"math/rand"
)

// Board is not safe for concurrent use; Game serialises access to it.
type Board struct {
	cards    []*Card
	rng      *rand.Rand
	columns  int
	rendered []*Card
	byID     map[string]*Card
	onClick  func(*Card)
}

// NewBoard wraps cards in a board that shuffles with rng.
func NewBoard(cards []*Card, rng *rand.Rand) *Board {
	return &Board{
		cards:   cards,
		rng:     rng,
		columns: calculateColumns(len(cards)),
		byID:    make(map[string]*Card, len(cards)),
	}
}

// calculateColumns lays N cards out in floor(sqrt(N)) columns.
func calculateColumns(n int) int {
	return int(math.Floor(math.Sqrt(float64(n))))
}

// Render clears the rendered container and repopulates it in current card order.
func (b *Board) Render() {
	b.rendered = b.rendered[:0]
	clear(b.byID)
	for _, c := range b.cards {
		b.rendered = append(b.rendered, c)
		b.byID[c.ID] = c
	}
}

// ShuffleCards applies a uniform Fisher-Yates permutation.
func (b *Board) ShuffleCards() {
	b.rng.Shuffle(len(b.cards), func(i, j int) {
		b.cards[i], b.cards[j] = b.cards[j], b.cards[i]
	})
}

// FlipDownAllCards turns every face-up card face-down.
func (b *Board) FlipDownAllCards() {
	for _, c := range b.cards {
		if c.Flipped {
			c.ToggleFlip()
		}
	}
}

// FlipUpAllCards turns every face-down card face-up.
func (b *Board) FlipUpAllCards() {
	for _, c := range b.cards {
		if !c.Flipped {
			c.ToggleFlip()
		}
	}
}

// Reset shuffles, flips everything down, recomputes the grid and re-renders.
func (b *Board) Reset() {
	b.ShuffleCards()
	b.FlipDownAllCards()
	b.columns = calculateColumns(len(b.cards))
	b.Render()
}

// OnCardClicked registers the delegated click listener, replacing any previous one.
func (b *Board) OnCardClicked(fn func(*Card)) {
	b.onClick = fn
}

// Click dispatches a click on the rendered node with the given ID.
// It reports whether the click landed on a card.
func (b *Board) Click(id string) bool {
	c, ok := b.byID[id]
	if !ok {
		return false
	}
	if b.onClick != nil {
		b.onClick(c)
	}
	return true
}

// Columns is the grid column count applied at the last reset.
func (b *Board) Columns() int { return b.columns }

// Len is the number of cards in the deck.
func (b *Board) Len() int { return len(b.cards) }

// Cards returns the rendered cards in display order.
func (b *Board) Cards() []*Card {
	out := make([]*Card, len(b.rendered))
	copy(out, b.rendered)
	return out
}
