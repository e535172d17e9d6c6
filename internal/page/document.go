package page

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Errors returned by Document mutation and observation methods.
var (
	ErrNilNode       = errors.New("page: nil node")
	ErrHasParent     = errors.New("page: node already has a parent")
	ErrNotChild      = errors.New("page: node is not a child of parent")
	ErrNotContainer  = errors.New("page: node cannot have children")
	ErrNotText       = errors.New("page: node is not a text node")
	ErrEmptyObserve  = errors.New("page: observe options select nothing")
	ErrAncestorCycle = errors.New("page: node would contain itself")
)

// MutationType tells what changed.
type MutationType int

const (
	// ChildList records nodes added to or removed from Target.
	ChildList MutationType = iota
	// CharacterData records a text node whose data changed.
	CharacterData
)

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type         MutationType
	Target       *Node
	AddedNodes   []*Node
	RemovedNodes []*Node
	OldValue     string
}

// ObserveOptions selects which changes an observer receives.
type ObserveOptions struct {
	ChildList     bool // child insertions/removals on the target
	Subtree       bool // extend to every descendant of the target
	CharacterData bool // text data changes
}

// Callback receives one batch of records. Callbacks never run concurrently.
type Callback func(records []MutationRecord)

// Observer is a registered mutation callback.
type Observer struct {
	doc    *Document
	target *Node
	opts   ObserveOptions
	fn     Callback

	pending      []MutationRecord // guarded by doc.obsMu
	running      sync.Mutex       // held around the disconnected check and fn
	disconnected atomic.Bool
}

// Disconnect stops delivery. Pending records are dropped. It waits for a
// callback already running on this observer, so no invocation is in flight
// or starts after it returns; it must not be called from the observer's
// own callback. Calling it again is a no-op.
func (o *Observer) Disconnect() {
	if o == nil {
		return
	}
	o.running.Lock()
	defer o.running.Unlock()
	if o.disconnected.Swap(true) {
		return
	}

	d := o.doc
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	o.pending = nil
	for i, other := range d.observers {
		if other == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			break
		}
	}
}

// deliver runs the callback unless the observer is disconnected.
func (o *Observer) deliver(records []MutationRecord) bool {
	o.running.Lock()
	defer o.running.Unlock()
	if o.disconnected.Load() {
		return false
	}
	o.fn(records)
	return true
}

func (o *Observer) covers(rec MutationRecord) bool {
	switch rec.Type {
	case ChildList:
		if !o.opts.ChildList {
			return false
		}
	case CharacterData:
		if !o.opts.CharacterData {
			return false
		}
	}
	if rec.Target == o.target {
		return true
	}
	return o.opts.Subtree && o.target.Contains(rec.Target)
}

// Document owns a node tree and the observers registered on it.
//
// Mutations take the write lock; callbacks and View run under the read
// lock, so observers always see a consistent tree. Records are queued as
// mutations happen and delivered in batches by Flush, either directly or
// from the Serve goroutine.
type Document struct {
	mu   sync.RWMutex
	root *Node

	obsMu     sync.Mutex
	observers []*Observer

	deliverMu sync.Mutex
	notify    chan struct{}
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		root:   &Node{Type: DocumentNode},
		notify: make(chan struct{}, 1),
	}
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// View runs fn with the tree locked for reading. Do not call it from a
// callback; callbacks already hold the read lock.
func (d *Document) View(fn func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

// GetElementByID returns the first element with the given id, or nil.
// Call it from View or a callback.
func (d *Document) GetElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	d.root.walk(func(n *Node) bool {
		if n.IsElement() && n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Observe registers fn for changes under target.
func (d *Document) Observe(target *Node, opts ObserveOptions, fn Callback) (*Observer, error) {
	if target == nil || fn == nil {
		return nil, ErrNilNode
	}
	if !opts.ChildList && !opts.CharacterData {
		return nil, ErrEmptyObserve
	}
	o := &Observer{doc: d, target: target, opts: opts, fn: fn}
	d.obsMu.Lock()
	d.observers = append(d.observers, o)
	d.obsMu.Unlock()
	return o, nil
}

// AppendChild adds child as the last child of parent.
func (d *Document) AppendChild(parent, child *Node) error {
	return d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child into parent before ref. A nil ref appends.
func (d *Document) InsertBefore(parent, child, ref *Node) error {
	if parent == nil || child == nil {
		return ErrNilNode
	}
	if parent.Type == TextNode {
		return ErrNotContainer
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if child.Parent != nil {
		return ErrHasParent
	}
	if child.Contains(parent) {
		return ErrAncestorCycle
	}
	idx := len(parent.Children)
	if ref != nil {
		idx = parent.indexOf(ref)
		if idx < 0 {
			return ErrNotChild
		}
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = child
	child.Parent = parent

	d.queue(MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*Node{child}})
	return nil
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *Node) error {
	if parent == nil || child == nil {
		return ErrNilNode
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := parent.indexOf(child)
	if idx < 0 {
		return ErrNotChild
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	child.Parent = nil

	d.queue(MutationRecord{Type: ChildList, Target: parent, RemovedNodes: []*Node{child}})
	return nil
}

// SetText replaces the data of a text node.
func (d *Document) SetText(text *Node, data string) error {
	if text == nil {
		return ErrNilNode
	}
	if text.Type != TextNode {
		return ErrNotText
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old := text.Data
	if old == data {
		return nil
	}
	text.Data = data
	d.queue(MutationRecord{Type: CharacterData, Target: text, OldValue: old})
	return nil
}

// queue hands rec to every observer that covers it. Must be called with
// d.mu held for writing.
func (d *Document) queue(rec MutationRecord) {
	d.obsMu.Lock()
	queued := false
	for _, o := range d.observers {
		if o.covers(rec) {
			o.pending = append(o.pending, rec)
			queued = true
		}
	}
	d.obsMu.Unlock()

	if queued {
		select {
		case d.notify <- struct{}{}:
		default: // already signaled
		}
	}
}

// Flush delivers every pending batch, one callback per observer in
// registration order. It returns the number of callbacks run.
func (d *Document) Flush() int {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	type batch struct {
		o       *Observer
		records []MutationRecord
	}

	d.obsMu.Lock()
	var batches []batch
	for _, o := range d.observers {
		if len(o.pending) == 0 {
			continue
		}
		batches = append(batches, batch{o: o, records: o.pending})
		o.pending = nil
	}
	d.obsMu.Unlock()

	if len(batches) == 0 {
		return 0
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	delivered := 0
	for _, b := range batches {
		if b.o.deliver(b.records) {
			delivered++
		}
	}
	return delivered
}

// Serve delivers batches as they are queued until ctx is cancelled.
// Intended to be called as a goroutine.
func (d *Document) Serve(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.notify:
			d.Flush()
		}
	}
}
