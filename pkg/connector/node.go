package connector

import "github.com/chocoteam/cpp-integration/pkg/protocol"

// NodeOption sets an optional field of a NODE message.
type NodeOption func(protocol.Message) protocol.Message

func WithLabel(s string) NodeOption {
	return func(m protocol.Message) protocol.Message { return m.WithLabel(s) }
}

func WithNogood(s string) NodeOption {
	return func(m protocol.Message) protocol.Message { return m.WithNogood(s) }
}

func WithInfo(s string) NodeOption {
	return func(m protocol.Message) protocol.Message { return m.WithInfo(s) }
}

// Node builds a NODE message field by field before sending it:
//
//	c.CreateNode(id, pid, 0, alt, 2, protocol.StatusBranch).SetLabel("x=1").Send()
type Node struct {
	c   *Connector
	msg protocol.Message
}

func (c *Connector) CreateNode(nodeID, parentID, restartCount, alt, kids int32, status protocol.Status) *Node {
	return &Node{c: c, msg: protocol.MakeNode(nodeID, parentID, restartCount, alt, kids, status)}
}

func (n *Node) SetLabel(s string) *Node  { n.msg = n.msg.WithLabel(s); return n }
func (n *Node) SetNogood(s string) *Node { n.msg = n.msg.WithNogood(s); return n }
func (n *Node) SetInfo(s string) *Node   { n.msg = n.msg.WithInfo(s); return n }

// Message returns the message built so far.
func (n *Node) Message() protocol.Message { return n.msg }

// Send sends the node through its Connector.
func (n *Node) Send() error { return n.c.Send(n.msg) }
