// Package book reconstructs a consistent order book from an exchange
// snapshot+delta depth feed and renders bounded, sorted views of it.
package book

import (
	"sort"
	"strconv"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

// removeSentinel is the size value that marks a level for removal in a delta.
const removeSentinel = "0"

// Book holds per-side price→size maps for a single instrument. Prices are
// kept as the exchange's exact decimal strings so map lookups never miss on
// float formatting differences. Book is not safe for concurrent use; the feed
// loop is its only mutator and reader.
type Book struct {
	bids map[string]string
	asks map[string]string
}

// New returns an empty book.
func New() *Book {
	return &Book{
		bids: make(map[string]string),
		asks: make(map[string]string),
	}
}

// ApplySnapshot replaces the entire book with the given levels. Each level is
// a [price, size] pair and is inserted unconditionally.
func (b *Book) ApplySnapshot(bids, asks [][2]string) {
	clear(b.bids)
	clear(b.asks)
	for _, lvl := range bids {
		b.bids[lvl[0]] = lvl[1]
	}
	for _, lvl := range asks {
		b.asks[lvl[0]] = lvl[1]
	}
}

// ApplyDelta patches the book incrementally. A size of "0" removes the level
// (silently ignored when the price was never seen); anything else upserts.
func (b *Book) ApplyDelta(bids, asks [][2]string) {
	applySide(b.bids, bids)
	applySide(b.asks, asks)
}

func applySide(side map[string]string, levels [][2]string) {
	for _, lvl := range levels {
		if lvl[1] == removeSentinel {
			delete(side, lvl[0])
		} else {
			side[lvl[0]] = lvl[1]
		}
	}
}

// Flatten renders the best depth levels of each side: bids descending and
// asks ascending by numeric price, truncated to at most depth entries.
func (b *Book) Flatten(depth int) (bids, asks []domain.PriceLevel) {
	bids = sortSide(b.bids, true, depth)
	asks = sortSide(b.asks, false, depth)
	return bids, asks
}

func sortSide(side map[string]string, descending bool, depth int) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(side))
	for price, size := range side {
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	sort.Slice(levels, func(i, j int) bool {
		pi, _ := strconv.ParseFloat(levels[i].Price, 64)
		pj, _ := strconv.ParseFloat(levels[j].Price, 64)
		if descending {
			return pi > pj
		}
		return pi < pj
	})
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	return levels
}
