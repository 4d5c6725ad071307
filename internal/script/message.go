// Package script holds the in-memory, per-iteration-resettable
// representation of a scripted client<->server conversation: an ordered
// MessageCollection of Messages, each an ordered, non-empty sequence of
// Subcomponents.
//
// A MessageCollection is constructed once from the on-disk script file and
// never mutated thereafter; the iteration controller takes a deep copy of it
// at the start of every iteration via Clone, so that intra-iteration mutation
// (callback edits, fuzzing) never bleeds into the next iteration.
package script

import "bytes"

// Direction tags a Message as outbound (sent by this engine) or inbound
// (expected to be received from the target).
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Message is one step of the scripted conversation.
//
// A Message with exactly one Subcomponent is "whole-message": the engine
// calls the sole-subcomponent callback variants (preFuzzProcess,
// preSendProcess) rather than the per-subcomponent variants. A Message with
// two or more Subcomponents is "has subcomponents" and the engine sweeps the
// per-subcomponent callback variants across all of them, in index order,
// before the final whole-message preSendProcess.
type Message struct {
	Direction     Direction       `json:"direction"`
	IsFuzzed      bool            `json:"isFuzzed"`
	Subcomponents []*Subcomponent `json:"subcomponents"`

	// Received holds the bytes read from the target for an inbound
	// message; set only during a run, nil beforehand.
	Received []byte `json:"-"`
}

// HasSubcomponents reports whether the message has more than one
// subcomponent and must use the per-subcomponent callback sweep.
func (m *Message) HasSubcomponents() bool {
	return len(m.Subcomponents) > 1
}

// GetAlteredMessage concatenates every subcomponent's current altered bytes
// in index order.
func (m *Message) GetAlteredMessage() []byte {
	var buf bytes.Buffer
	for _, sc := range m.Subcomponents {
		buf.Write(sc.GetAltered())
	}
	return buf.Bytes()
}

// GetOriginalMessage concatenates every subcomponent's load-time original
// bytes in index order; used by the reset-isolation property and by tests.
func (m *Message) GetOriginalMessage() []byte {
	var buf bytes.Buffer
	for _, sc := range m.Subcomponents {
		buf.Write(sc.GetOriginal())
	}
	return buf.Bytes()
}

// ResetSubcomponents restores every subcomponent's altered bytes to its
// load-time original. The run engine calls this at the top of processing
// every outbound message, even when no mutation will occur this iteration,
// to discard residue a callback left behind on an earlier iteration.
func (m *Message) ResetSubcomponents() {
	for _, sc := range m.Subcomponents {
		sc.Reset()
	}
}

// Clone produces a deep copy of the message, sharing no backing arrays with m.
func (m *Message) Clone() *Message {
	subs := make([]*Subcomponent, len(m.Subcomponents))
	for i, sc := range m.Subcomponents {
		subs[i] = sc.Clone()
	}
	var received []byte
	if m.Received != nil {
		received = append([]byte(nil), m.Received...)
	}
	return &Message{
		Direction:     m.Direction,
		IsFuzzed:      m.IsFuzzed,
		Subcomponents: subs,
		Received:      received,
	}
}

// Collection is the ordered sequence of Messages comprising one scripted
// conversation. Order is significant: it defines the alternating send/
// receive phases the run engine replays.
type Collection struct {
	Messages []*Message `json:"messages"`
}

// Clone produces a deep copy of the whole collection. The iteration
// controller calls this once per iteration so that a run's in-place edits
// (resets, callback rewrites, mutation) never carry over to the next seed.
func (c *Collection) Clone() *Collection {
	msgs := make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		msgs[i] = m.Clone()
	}
	return &Collection{Messages: msgs}
}

// Len returns the number of scripted messages.
func (c *Collection) Len() int { return len(c.Messages) }
