package mdbx

// Iterator walks key/value pairs in key order. It is driven by an explicit
// pair of cursor ops: the op for the first step and the op for every step
// after it. Next positions on the following pair and reports whether one
// exists; Key and Value return copies owned by the caller.
type Iterator struct {
	cur    *Cursor
	op     CursorOp
	nextOp CursorOp

	key, value []byte
	err        error
	done       bool

	ownCursor bool
	ownTxn    *Txn
}

// iterCursor resolves which cursor an iteration runs on: the cursor itself,
// or a duplicate of it so the original's position stays untouched. The
// duplicate is owned by the iterator and closed with it.
func (c *Cursor) iterCursor(copyCursor bool) (*Cursor, bool, error) {
	if !copyCursor {
		return c, false, nil
	}
	d, err := c.Dup()
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// Iter iterates the whole map from its first pair. A non-nil start
// positions at the first key not less than start instead; fromNext resumes
// after the cursor's current position. The two are mutually exclusive.
// With copyCursor the iteration runs on a duplicate of the cursor and
// leaves the cursor's own position untouched.
func (c *Cursor) Iter(start []byte, fromNext, copyCursor bool) (*Iterator, error) {
	if start != nil && fromNext {
		return nil, ErrIterArgs
	}
	cur, own, err := c.iterCursor(copyCursor)
	if err != nil {
		return nil, err
	}
	first := OpFirst
	if fromNext {
		first = OpNext
	}
	if start != nil {
		// Positioning side effect; a miss leaves the cursor past the end
		// and the iteration comes up empty.
		if _, _, err := cur.Get(start, OpSetRange); err != nil {
			if own {
				_ = cur.Close()
			}
			return nil, err
		}
		first = OpGetCurrent
	}
	return &Iterator{cur: cur, op: first, nextOp: OpNext, ownCursor: own}, nil
}

// IterDup iterates every key/value pair of a dupsort map, flattened in key
// then value order. The next op already descends into duplicate runs, so
// this is the same traversal as Iter; it exists so call sites can say what
// they mean.
func (c *Cursor) IterDup(start []byte, fromNext, copyCursor bool) (*Iterator, error) {
	return c.Iter(start, fromNext, copyCursor)
}

func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	op := it.op
	it.op = it.nextOp
	k, v, err := it.cur.Get(nil, op)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if k == nil && v == nil {
		it.done = true
		return false
	}
	it.key, it.value = k, v
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Valid() bool {
	return !it.done && it.err == nil && it.key != nil
}

// Err returns the first failure the iteration hit, if any. Running out of
// pairs is not a failure.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases whatever the iterator owns: nothing for an iterator over a
// borrowed cursor, the cursor for copy-cursor iterations and rows, and
// possibly the backing read transaction for iterators handed out by Items.
func (it *Iterator) Close() error {
	it.done = true
	var err error
	if it.ownCursor {
		err = it.cur.Close()
	}
	if it.ownTxn != nil {
		if aerr := it.ownTxn.Abort(); err == nil {
			err = aerr
		}
	}
	return err
}

// DupIterator walks a dupsort map one key at a time. Next advances to the
// following key; Row opens an inner Iterator over the values of the current
// key on an independent cursor.
type DupIterator struct {
	cur  *Cursor
	op   CursorOp
	key  []byte
	err  error
	done bool

	ownCursor bool
}

// IterDupRows iterates a dupsort map key by key. Start, fromNext and
// copyCursor behave as in Iter.
func (c *Cursor) IterDupRows(start []byte, fromNext, copyCursor bool) (*DupIterator, error) {
	if start != nil && fromNext {
		return nil, ErrIterArgs
	}
	cur, own, err := c.iterCursor(copyCursor)
	if err != nil {
		return nil, err
	}
	first := OpFirst
	if fromNext {
		first = OpNext
	}
	if start != nil {
		if _, _, err := cur.Get(start, OpSetRange); err != nil {
			if own {
				_ = cur.Close()
			}
			return nil, err
		}
		first = OpGetCurrent
	}
	return &DupIterator{cur: cur, op: first, ownCursor: own}, nil
}

func (it *DupIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	op := it.op
	it.op = OpNextNoDup
	k, v, err := it.cur.Get(nil, op)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if k == nil && v == nil {
		it.done = true
		return false
	}
	it.key = k
	return true
}

func (it *DupIterator) Key() []byte {
	return it.key
}

func (it *DupIterator) Err() error {
	return it.err
}

// Close releases the duplicate cursor of a copy-cursor iteration; for an
// iteration over a borrowed cursor it only stops the walk.
func (it *DupIterator) Close() error {
	it.done = true
	if it.ownCursor {
		return it.cur.Close()
	}
	return nil
}

// Row returns an iterator over the values of the current key. It runs on a
// duplicate of the outer cursor, so advancing the outer iterator does not
// disturb rows already handed out. The row iterator owns its cursor;
// closing it releases the cursor.
func (it *DupIterator) Row() (*Iterator, error) {
	d, err := it.cur.Dup()
	if err != nil {
		return nil, err
	}
	return &Iterator{cur: d, op: OpGetCurrent, nextOp: OpNextDup, ownCursor: true}, nil
}
