package cpwdesign

// Netlist records which pins are wired together. Nets are numbered in
// creation order and entries append in a stable order, so identical request
// sequences produce identical tables.
type Netlist struct {
	next    int
	byRef   map[PinRef]int
	entries []NetEntry
}

type NetEntry struct {
	Net int    `json:"net"`
	Ref PinRef `json:"ref"`
}

func NewNetlist() *Netlist {
	return &Netlist{byRef: make(map[PinRef]int)}
}

// Connect puts both pins on a fresh net and returns its id.
func (n *Netlist) Connect(a, b PinRef) int {
	net := n.next
	n.next++
	n.byRef[a] = net
	n.byRef[b] = net
	n.entries = append(n.entries, NetEntry{net, a}, NetEntry{net, b})
	return net
}

func (n *Netlist) NetOf(ref PinRef) (int, bool) {
	net, ok := n.byRef[ref]
	return net, ok
}

// Entries returns every registration in creation order.
func (n *Netlist) Entries() []NetEntry {
	return n.entries
}
