package protocol

import "fmt"

// ProtocolVersion is sent in the VERSION field of every START message.
const ProtocolVersion int32 = 3

// MsgType is the first byte of every encoded message.
type MsgType uint8

// Message types (wire codes)
const (
	MsgNode    MsgType = 0 // one explored search node
	MsgDone    MsgType = 1 // search finished
	MsgStart   MsgType = 2 // search started
	MsgRestart MsgType = 3 // search restarted
)

func (t MsgType) String() string {
	switch t {
	case MsgNode:
		return "node"
	case MsgDone:
		return "done"
	case MsgStart:
		return "start"
	case MsgRestart:
		return "restart"
	default:
		return fmt.Sprintf("msgtype(%d)", uint8(t))
	}
}

func (t MsgType) valid() bool { return t <= MsgRestart }

// Status is the exploration status of a node.
type Status uint8

const (
	StatusSolved  Status = 0 // node representing a solution
	StatusFailed  Status = 1 // node representing failure
	StatusBranch  Status = 2 // node representing a branch
	StatusSkipped Status = 3 // skipped by backjumping
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusFailed:
		return "failed"
	case StatusBranch:
		return "branch"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

func (s Status) valid() bool { return s <= StatusSkipped }

// Tag identifies an optional field inside the payload.
type Tag uint8

// Field tags. Encoding order is VERSION, LABEL, NOGOOD, INFO and does not
// follow the numeric order.
const (
	TagLabel   Tag = 0
	TagNogood  Tag = 1
	TagInfo    Tag = 2
	TagVersion Tag = 3
)

func (t Tag) String() string {
	switch t {
	case TagLabel:
		return "label"
	case TagNogood:
		return "nogood"
	case TagInfo:
		return "info"
	case TagVersion:
		return "version"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}
