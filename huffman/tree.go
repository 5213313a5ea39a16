package huffman

import (
	"container/heap"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/codec"
)

// A Node is one node of a coding tree: an internal node with two children,
// or a leaf carrying a byte symbol. Every internal node of a well-formed
// tree has both children set.
type Node struct {
	Weight      uint64
	Symbol      byte
	Left, Right *Node
}

// Leaf reports whether the node is a leaf.
func (n *Node) Leaf() bool { return n.Left == nil && n.Right == nil }

// A Tree is a Huffman coding tree together with a cursor used for bit-by-bit
// decoding. The zero value is an empty tree.
type Tree struct {
	root *Node
	cur  *Node
}

// heap items carry an insertion sequence number so that equal weights pop in
// insertion order, keeping construction deterministic.
type heapItem struct {
	node *Node
	seq  int
}

type nodeQueue []heapItem

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].node.Weight != q[j].node.Weight {
		return q[i].node.Weight < q[j].node.Weight
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(heapItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// Build constructs the coding tree for the given frequencies. Symbols enter
// the queue in ascending byte-value order; ties between equal weights pop in
// insertion order, so the tree is fully determined by the frequency table.
func Build(f *Frequencies) *Tree {
	t := &Tree{}
	q := make(nodeQueue, 0, 256)
	seq := 0
	for s := 0; s < 256; s++ {
		if c := f.Count(byte(s)); c > 0 {
			q = append(q, heapItem{&Node{Weight: c, Symbol: byte(s)}, seq})
			seq++
		}
	}
	if len(q) == 0 {
		return t
	}
	heap.Init(&q)
	for q.Len() > 1 {
		a := heap.Pop(&q).(heapItem)
		b := heap.Pop(&q).(heapItem)
		parent := &Node{
			Weight: a.node.Weight + b.node.Weight,
			Left:   a.node,
			Right:  b.node,
		}
		heap.Push(&q, heapItem{parent, seq})
		seq++
	}
	t.root = q[0].node
	t.cur = t.root
	return t
}

// A Codebook maps each byte symbol to its code, a sequence of 0/1 bit
// values. Symbols absent from the tree have a nil code.
type Codebook [256][]byte

// Size returns the number of symbols with a code.
func (cb *Codebook) Size() int {
	n := 0
	for _, code := range cb {
		if code != nil {
			n++
		}
	}
	return n
}

// Codes extracts the codebook: walking left appends 0, walking right
// appends 1. A tree whose root is a leaf assigns its symbol the one-bit
// code 1.
func (t *Tree) Codes() *Codebook {
	var cb Codebook
	if t.root == nil {
		return &cb
	}
	if t.root.Leaf() {
		cb[t.root.Symbol] = []byte{1}
		return &cb
	}
	type frame struct {
		node *Node
		path []byte
	}
	stack := []frame{{t.root, nil}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fr.node.Leaf() {
			cb[fr.node.Symbol] = fr.path
			continue
		}
		left := append(append([]byte(nil), fr.path...), 0)
		right := append(append([]byte(nil), fr.path...), 1)
		stack = append(stack, frame{fr.node.Right, right}, frame{fr.node.Left, left})
	}
	return &cb
}

// WriteTo serializes the tree in pre-order, left subtree first: an internal
// node is the bit 0 followed by its subtrees; a leaf is the bit 1 followed
// by the 8-bit symbol. An empty tree writes nothing.
func (t *Tree) WriteTo(w *bitio.Writer) error {
	if t.root == nil {
		return nil
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Leaf() {
			if err := w.WriteBit(1); err != nil {
				return err
			}
			if err := w.WriteByte(n.Symbol); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteBit(0); err != nil {
			return err
		}
		// Push right below left so the left subtree is emitted first.
		stack = append(stack, n.Right, n.Left)
	}
	return nil
}

// ReadTree rebuilds a tree serialized by WriteTo. Parsing is iterative over
// a stack of unfilled child slots; it ends exactly when every slot has been
// filled.
func ReadTree(r *bitio.Reader) (*Tree, error) {
	t := &Tree{}
	slots := []**Node{&t.root}
	for len(slots) > 0 {
		slot := slots[len(slots)-1]
		slots = slots[:len(slots)-1]
		b, err := r.ReadBit()
		if err != nil {
			return nil, errors.Wrap(codec.TranslateEOF(err), "huffman: reading tree")
		}
		if b == 1 {
			sym, err := r.ReadByte()
			if err != nil {
				return nil, errors.Wrap(codec.TranslateEOF(err), "huffman: reading leaf symbol")
			}
			*slot = &Node{Symbol: sym}
			continue
		}
		n := &Node{}
		*slot = n
		// Fill the left child first, mirroring WriteTo.
		slots = append(slots, &n.Right, &n.Left)
	}
	t.cur = t.root
	return t, nil
}

// RootIsLeaf reports whether the tree consists of a single leaf.
func (t *Tree) RootIsLeaf() bool { return t.root != nil && t.root.Leaf() }

// Step advances the decode cursor by one bit: 0 descends left, 1 right.
// Stepping where no child exists is a decoder error.
func (t *Tree) Step(b byte) error {
	if t.cur == nil {
		return errors.Wrap(codec.ErrHeaderInvalid, "huffman: walk on empty tree")
	}
	next := t.cur.Left
	if b != 0 {
		next = t.cur.Right
	}
	if next == nil {
		return errors.Wrap(codec.ErrHeaderInvalid, "huffman: no tree path for code")
	}
	t.cur = next
	return nil
}

// AtLeaf reports whether the decode cursor is on a leaf.
func (t *Tree) AtLeaf() bool { return t.cur != nil && t.cur.Leaf() }

// Symbol returns the symbol at the decode cursor. Valid only when AtLeaf.
func (t *Tree) Symbol() byte { return t.cur.Symbol }

// ResetCursor returns the decode cursor to the root.
func (t *Tree) ResetCursor() { t.cur = t.root }

// MeanCodeLength returns the average code length in bits weighted by leaf
// weight, where total is the sum of all leaf weights. A single-leaf tree
// codes its symbol in one bit.
func (t *Tree) MeanCodeLength(total uint64) float64 {
	if t.root == nil || total == 0 {
		return 0
	}
	if t.root.Leaf() {
		return 1
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{t.root, 0}}
	mean := 0.0
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fr.node.Leaf() {
			mean += float64(fr.node.Weight) / float64(total) * float64(fr.depth)
			continue
		}
		stack = append(stack, frame{fr.node.Right, fr.depth + 1}, frame{fr.node.Left, fr.depth + 1})
	}
	return mean
}
