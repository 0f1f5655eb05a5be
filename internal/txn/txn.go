// Package txn provides a small transactional apply/rollback container used
// by operations that must undo already-completed steps when a later step
// fails, such as moving a package's data across volumes.
package txn

import (
	"errors"

	"droid.dev/instd/internal/elog"
)

// Op is a reversible operation.
type Op interface {
	Apply() error
	Revert() error

	String() string
}

// New returns an empty [Transaction].
func New(msg elog.Msg) *Transaction { return &Transaction{msg: msg} }

// Transaction applies a sequence of [Op] and reverts everything already
// applied if a later one fails. A [Transaction] must not be reused after
// [Transaction.Commit] or [Transaction.Revert] returns.
type Transaction struct {
	ops       []Op
	committed bool
	reverted  bool
	msg       elog.Msg
}

// Add appends op to the pending transaction.
func (t *Transaction) Add(op Op) *Transaction {
	t.ops = append(t.ops, op)
	return t
}

// Commit applies every pending [Op] in order, rolling back everything
// already applied on the first error. Commit must not be called twice.
func (t *Transaction) Commit() error {
	if t.committed {
		panic("txn: attempted double commit")
	}
	t.committed = true

	applied := make([]Op, 0, len(t.ops))
	for _, op := range t.ops {
		t.msg.Verbose("applying", op)
		if err := op.Apply(); err != nil {
			if rerr := revertAll(applied, t.msg); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}
		applied = append(applied, op)
	}
	return nil
}

// Revert reverts every pending [Op] in reverse order regardless of whether
// it was ever applied. Revert must not be called twice.
func (t *Transaction) Revert() error {
	if t.reverted {
		panic("txn: attempted double revert")
	}
	t.reverted = true
	return revertAll(t.ops, t.msg)
}

func revertAll(ops []Op, msg elog.Msg) error {
	errs := make([]error, len(ops))
	for i := range ops {
		op := ops[len(ops)-i-1]
		msg.Verbose("reverting", op)
		errs[i] = op.Revert()
	}
	return errors.Join(errs...)
}
