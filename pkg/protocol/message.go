package protocol

import "fmt"

// NodeFields are the fixed fields of a NODE message.
type NodeFields struct {
	NodeID       int32
	ParentID     int32
	RestartCount int32
	Alt          int32 // branch index among siblings
	Kids         int32 // child count
	Status       Status
}

// Message is one protocol event. Values are immutable: the With* methods
// return a modified copy.
type Message struct {
	typ  MsgType
	node NodeFields

	label   Option[string]
	nogood  Option[string]
	info    Option[string]
	version Option[int32]
}

// MakeNode returns a NODE message with no optional fields set.
func MakeNode(nodeID, parentID, restartCount, alt, kids int32, status Status) Message {
	return Message{typ: MsgNode, node: NodeFields{
		NodeID:       nodeID,
		ParentID:     parentID,
		RestartCount: restartCount,
		Alt:          alt,
		Kids:         kids,
		Status:       status,
	}}
}

// MakeStart returns a START message carrying ProtocolVersion and info.
func MakeStart(info string) Message {
	return Message{typ: MsgStart, version: Some(ProtocolVersion), info: Some(info)}
}

// MakeRestart returns a RESTART message carrying info.
func MakeRestart(info string) Message {
	return Message{typ: MsgRestart, info: Some(info)}
}

// MakeDone returns a DONE message.
func MakeDone() Message { return Message{typ: MsgDone} }

func (m Message) Type() MsgType   { return m.typ }
func (m Message) IsNode() bool    { return m.typ == MsgNode }
func (m Message) IsStart() bool   { return m.typ == MsgStart }
func (m Message) IsRestart() bool { return m.typ == MsgRestart }
func (m Message) IsDone() bool    { return m.typ == MsgDone }

// Node returns the fixed fields; it fails for non-NODE messages.
func (m Message) Node() (NodeFields, error) {
	if m.typ != MsgNode {
		return NodeFields{}, fmt.Errorf("%s message has no node fields: %w", m.typ, ErrInvalidState)
	}
	return m.node, nil
}

func (m Message) WithLabel(s string) Message  { m.label = Some(s); return m }
func (m Message) WithNogood(s string) Message { m.nogood = Some(s); return m }
func (m Message) WithInfo(s string) Message   { m.info = Some(s); return m }

func (m Message) HasLabel() bool   { return m.label.Valid() }
func (m Message) HasNogood() bool  { return m.nogood.Valid() }
func (m Message) HasInfo() bool    { return m.info.Valid() }
func (m Message) HasVersion() bool { return m.version.Valid() }

func (m Message) Label() (string, error)  { return m.label.Get() }
func (m Message) Nogood() (string, error) { return m.nogood.Get() }
func (m Message) Info() (string, error)   { return m.info.Get() }
func (m Message) Version() (int32, error) { return m.version.Get() }

func (m Message) String() string {
	s := m.typ.String()
	if m.typ == MsgNode {
		n := m.node
		s += fmt.Sprintf(" id=%d parent=%d restart=%d alt=%d kids=%d status=%s",
			n.NodeID, n.ParentID, n.RestartCount, n.Alt, n.Kids, n.Status)
	}
	if m.version.Valid() {
		s += " version=" + m.version.String()
	}
	if m.label.Valid() {
		s += fmt.Sprintf(" label=%q", m.label.value)
	}
	if m.nogood.Valid() {
		s += fmt.Sprintf(" nogood=%q", m.nogood.value)
	}
	if m.info.Valid() {
		s += fmt.Sprintf(" info=%q", m.info.value)
	}
	return s
}
