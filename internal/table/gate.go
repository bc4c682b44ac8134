package table

// GateState is the delete confirmation's state.
type GateState int

const (
	GateClosed GateState = iota
	GateOpen
	GateConfirmed
)

// Gate is the mandatory confirmation in front of every delete. One open
// cycle yields at most one confirmed id.
type Gate struct {
	state GateState
	rowID string
}

func (g *Gate) State() GateState {
	return g.state
}

// RowID returns the row bound to an open or confirmed gate.
func (g *Gate) RowID() string {
	if g.state == GateClosed {
		return ""
	}
	return g.rowID
}

// Open binds the gate to rowID. An open gate is rebound; a confirmed gate
// whose delete is still in flight refuses.
func (g *Gate) Open(rowID string) bool {
	if g.state == GateConfirmed {
		return false
	}
	g.state = GateOpen
	g.rowID = rowID
	return true
}

// Confirm hands out the bound id the first time only.
func (g *Gate) Confirm() (string, bool) {
	if g.state != GateOpen {
		return "", false
	}
	g.state = GateConfirmed
	return g.rowID, true
}

// Cancel closes an open gate without any side effect.
func (g *Gate) Cancel() bool {
	if g.state != GateOpen {
		return false
	}
	g.Close()
	return true
}

// Close ends the cycle once the confirmed delete has resolved.
func (g *Gate) Close() {
	g.state = GateClosed
	g.rowID = ""
}
