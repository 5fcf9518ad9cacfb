// Package memory is an in-process implementation of the billing
// repositories. A transaction holds the store lock for its whole duration
// and rolls every table back when its callback fails.
package memory

import (
	"context"
	"maps"
	"sync"
)

type txKey struct{}

// Store holds every table in memory.
type Store struct {
	mu sync.Mutex
	t  *tables
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{t: newTables()}
}

// WithinTransaction runs fn with exclusive access to the store. Tables are
// restored to their previous contents when fn returns an error. Nested
// calls join the running transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTxn(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

func (s *Store) inTxn(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// run executes fn against the tables, taking the lock unless ctx already
// runs inside this store's transaction.
func (s *Store) run(ctx context.Context, fn func(t *tables) error) error {
	if s.inTxn(ctx) {
		return fn(s.t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.t)
}

// Stored values are never mutated in place, so a shallow copy of each map
// is a consistent snapshot.
func (t *tables) clone() *tables {
	return &tables{
		services:        maps.Clone(t.services),
		entries:         maps.Clone(t.entries),
		clients:         maps.Clone(t.clients),
		clientServices:  maps.Clone(t.clientServices),
		orders:          maps.Clone(t.orders),
		discounts:       maps.Clone(t.discounts),
		clientDiscounts: maps.Clone(t.clientDiscounts),
		outbox:          maps.Clone(t.outbox),
	}
}
