// Package committer implements the Golden Mutation Pattern for Spanner transactions.
//
// Repositories never apply writes themselves. Inside WithinTransaction they
// buffer mutations into the CommitPlan carried by the context, and the plan
// is written atomically when the callback returns nil. Reads made through
// Reader inside the callback run in the same read-write transaction, so the
// rows they touch stay locked until commit.
//
// # Usage Pattern
//
//	err := c.WithinTransaction(ctx, func(ctx context.Context) error {
//	    // 1. Load aggregates (locks their rows)
//	    order, err := orders.GetByID(ctx, id)
//
//	    // 2. Call domain methods (pure business logic)
//	    if err := order.Cancel(now); err != nil {
//	        return err
//	    }
//
//	    // 3. Repositories buffer mutations, outbox events go into the same plan
//	    return orders.Save(ctx, order)
//	})
//
// Spanner does not expose buffered writes to reads of the same transaction,
// so a callback must load everything it needs before saving.
package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// CommitPlan is a typed wrapper around Spanner mutations for the Golden Mutation Pattern.
// It collects mutations from multiple sources and applies them atomically.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Reader is the read surface shared by single-use and read-write transactions.
type Reader interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

type txKey struct{}

type txState struct {
	txn  *spanner.ReadWriteTransaction
	plan *CommitPlan
}

func stateFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey{}).(*txState)
	return st
}

// PlanFrom returns the plan of the transaction running in ctx, if any.
func PlanFrom(ctx context.Context) (*CommitPlan, bool) {
	if st := stateFrom(ctx); st != nil {
		return st.plan, true
	}
	return nil, false
}

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply executes the CommitPlan atomically without a read phase.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil // Nothing to commit
	}

	_, err := c.client.Apply(ctx, plan.Mutations())
	if err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}

	return nil
}

// WithinTransaction runs fn in a read-write transaction and commits the
// mutations it buffered. Spanner may retry fn on abort, so fn must not
// keep state between attempts. A nested call joins the running transaction.
func (c *Committer) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if stateFrom(ctx) != nil {
		return fn(ctx)
	}

	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		st := &txState{txn: txn, plan: NewPlan()}
		if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
			return err
		}
		if st.plan.IsEmpty() {
			return nil
		}
		return txn.BufferWrite(st.plan.Mutations())
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// Buffer adds mutations to the running transaction, or applies them right
// away when ctx carries none.
func (c *Committer) Buffer(ctx context.Context, muts ...*spanner.Mutation) error {
	if st := stateFrom(ctx); st != nil {
		st.plan.AddMultiple(muts)
		return nil
	}
	plan := NewPlan()
	plan.AddMultiple(muts)
	return c.Apply(ctx, plan)
}

// Reader returns the transaction running in ctx, or a single-use
// read-only transaction.
func (c *Committer) Reader(ctx context.Context) Reader {
	if st := stateFrom(ctx); st != nil {
		return st.txn
	}
	return c.client.Single()
}
