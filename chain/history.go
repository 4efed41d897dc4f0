package chain

import (
	"context"
	"iter"
	"sync/atomic"
)

// History is a lazy, finite sequence of transactions ordered newest first.
// It can be ranged over once; a second range yields ErrHistoryConsumed.
type History iter.Seq2[Transaction, error]

// PageFunc fetches the page that starts after cursor. The first call gets an
// empty cursor. An empty next cursor ends the sequence.
type PageFunc func(ctx context.Context, cursor string) (page []Transaction, next string, err error)

// Paginate builds a History that pulls pages from fetch on demand and stops
// after limit transactions.
func Paginate(ctx context.Context, limit int, fetch PageFunc) History {
	var used atomic.Bool
	return func(yield func(Transaction, error) bool) {
		if used.Swap(true) {
			yield(Transaction{}, ErrHistoryConsumed)
			return
		}
		if limit <= 0 {
			return
		}

		emitted := 0
		cursor := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(Transaction{}, err)
				return
			}

			page, next, err := fetch(ctx, cursor)
			if err != nil {
				yield(Transaction{}, err)
				return
			}

			for _, tx := range page {
				if !yield(tx, nil) {
					return
				}
				emitted++
				if emitted >= limit {
					return
				}
			}

			if next == "" || len(page) == 0 {
				return
			}
			cursor = next
		}
	}
}

// Collect drains h into a slice, stopping at the first error.
func Collect(h History) ([]Transaction, error) {
	var txs []Transaction
	for tx, err := range h {
		if err != nil {
			return txs, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
