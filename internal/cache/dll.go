package cache

// DLLNode is the single entity of the doubly linked list.
type DLLNode struct {
	left  *DLLNode
	right *DLLNode
	key   string
	value *Entry
}

// Left returns the node to the left of the current node.
func (n *DLLNode) Left() *DLLNode { return n.left }

// Right returns the node to the right of the current node.
func (n *DLLNode) Right() *DLLNode { return n.right }

// Key returns the key of the node.
func (n *DLLNode) Key() string { return n.key }

// DoublyLinkedList keeps nodes from head (most recently used) to tail
// (least recently used).
type DoublyLinkedList struct {
	Head *DLLNode
	Tail *DLLNode
	len  int
}

// NewDoublyLinkedList returns a new instance of an empty DoublyLinkedList.
func NewDoublyLinkedList() *DoublyLinkedList {
	return &DoublyLinkedList{}
}

// Len returns the number of nodes in the list.
func (dll *DoublyLinkedList) Len() int { return dll.len }

// PushFront inserts a new node at the head and returns it.
func (dll *DoublyLinkedList) PushFront(key string, value *Entry) *DLLNode {
	node := &DLLNode{key: key, value: value}
	dll.linkFront(node)
	return node
}

// MoveToFront moves an existing node to the head.
func (dll *DoublyLinkedList) MoveToFront(node *DLLNode) {
	if dll.Head == node {
		return
	}
	dll.unlink(node)
	dll.linkFront(node)
}

// DeleteNode unlinks node from the list.
func (dll *DoublyLinkedList) DeleteNode(node *DLLNode) {
	dll.unlink(node)
}

// Keys returns the keys from head to tail.
func (dll *DoublyLinkedList) Keys() []string {
	keys := make([]string, 0, dll.len)
	for n := dll.Head; n != nil; n = n.right {
		keys = append(keys, n.key)
	}
	return keys
}

func (dll *DoublyLinkedList) linkFront(node *DLLNode) {
	node.left = nil
	node.right = dll.Head
	if dll.Head != nil {
		dll.Head.left = node
	}
	dll.Head = node
	if dll.Tail == nil {
		dll.Tail = node
	}
	dll.len++
}

func (dll *DoublyLinkedList) unlink(node *DLLNode) {
	if node.left != nil {
		node.left.right = node.right
	} else {
		dll.Head = node.right
	}
	if node.right != nil {
		node.right.left = node.left
	} else {
		dll.Tail = node.left
	}
	node.left, node.right = nil, nil
	dll.len--
}
