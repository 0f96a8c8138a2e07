package match

import (
	"github.com/google/btree"
)

type accountEntry struct {
	accountID string
	arrival   uint64
	order     *Order
}

// accountIndex maps accounts to their resting orders, ordered by first arrival.
// It holds pointers into the book sides, so remaining amounts stay current.
type accountIndex struct {
	tree     *btree.BTreeG[accountEntry]
	accounts map[string]struct{}
}

func newAccountIndex() *accountIndex {
	return &accountIndex{
		tree: btree.NewG(16, func(a, b accountEntry) bool {
			if a.accountID != b.accountID {
				return a.accountID < b.accountID
			}
			return a.arrival < b.arrival
		}),
		accounts: make(map[string]struct{}),
	}
}

func (idx *accountIndex) add(order *Order) {
	idx.accounts[order.AccountID] = struct{}{}
	idx.tree.ReplaceOrInsert(accountEntry{accountID: order.AccountID, arrival: order.initial, order: order})
}

func (idx *accountIndex) remove(order *Order) {
	idx.tree.Delete(accountEntry{accountID: order.AccountID, arrival: order.initial})
}

// pending returns copies of the account's resting orders.
func (idx *accountIndex) pending(accountID string) []Order {
	result := make([]Order, 0)

	idx.tree.AscendGreaterOrEqual(accountEntry{accountID: accountID}, func(e accountEntry) bool {
		if e.accountID != accountID {
			return false
		}
		result = append(result, *e.order)
		return true
	})

	return result
}

// all groups resting orders by account. Every account ever indexed gets a key,
// even when nothing of it is resting any more.
func (idx *accountIndex) all() map[string][]Order {
	result := make(map[string][]Order, len(idx.accounts))
	for accountID := range idx.accounts {
		result[accountID] = make([]Order, 0)
	}

	idx.tree.Ascend(func(e accountEntry) bool {
		result[e.accountID] = append(result[e.accountID], *e.order)
		return true
	})

	return result
}
