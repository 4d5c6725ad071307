// Package engine implements one complete replay of a scripted conversation
// for a given seed: the run engine (C5). A single Run call resolves each
// outbound message's bytes through the callback sweep and optional
// mutation, sends it, and for each inbound message receives and hands the
// bytes to the logger sink and the postReceive hook.
package engine

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/callback"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/logsink"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/transport"
)

// Mutator is the subset of mutate.Oracle the engine depends on, so tests can
// substitute a fake without spawning a real child process.
type Mutator interface {
	Mutate(ctx context.Context, seed int, input []byte) ([]byte, error)
}

// Engine replays one FuzzerData's message collection over a transport.Conn,
// once per call to Run.
type Engine struct {
	Transport transport.Options
	Processor callback.Processor
	Mutator   Mutator
	Sink      logsink.Sink
	DumpDir   *logsink.DumpWriter // nil unless --dumpraw is active
	Logger    *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Run executes one full iteration at the given seed (seed < 0 means dry
// run: no mutator is ever invoked) against a fresh copy of messages. The
// caller is expected to pass a per-iteration Clone of the loaded script, per
// the deep-copy-per-iteration invariant.
func (e *Engine) Run(ctx context.Context, seed int, messages *script.Collection) error {
	e.Sink.StartNewRun()

	if err := e.Processor.PreConnect(seed, e.Transport.Host, e.Transport.Port); err != nil {
		return err
	}

	conn, err := transport.Open(e.Transport)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, m := range messages.Messages {
		var err error
		if m.Direction == script.Outbound {
			err = e.sendMessage(ctx, conn, i, seed, m)
		} else {
			err = e.receiveMessage(ctx, conn, i, seed, m)
		}
		if err != nil {
			e.Sink.RecordHighestMessageIndex(i)
			return err
		}
		e.Sink.RecordHighestMessageIndex(i)
	}
	return nil
}

func (e *Engine) sendMessage(ctx context.Context, conn transport.Conn, index, seed int, m *script.Message) error {
	m.ResetSubcomponents()

	original := snapshot(m.Subcomponents)

	if m.HasSubcomponents() {
		for subIdx, sc := range m.Subcomponents {
			cbCtx := callback.Context{
				MessageIndex:          index,
				SubcomponentIndex:     subIdx,
				IsFuzzed:              sc.IsFuzzed,
				OriginalSubcomponents: original,
				ActualSubcomponents:   snapshot(m.Subcomponents),
			}
			out, err := e.Processor.PreFuzzSubcomponentProcess(sc.GetAltered(), cbCtx)
			if err != nil {
				return err
			}
			sc.SetAltered(out)
		}
	} else {
		sc := m.Subcomponents[0]
		cbCtx := callback.Context{
			MessageIndex:          index,
			SubcomponentIndex:     -1,
			IsFuzzed:              sc.IsFuzzed,
			OriginalSubcomponents: original,
			ActualSubcomponents:   snapshot(m.Subcomponents),
		}
		out, err := e.Processor.PreFuzzProcess(sc.GetAltered(), cbCtx)
		if err != nil {
			return err
		}
		sc.SetAltered(out)
	}

	fuzzedAny := false
	if seed >= 0 {
		for _, sc := range m.Subcomponents {
			if !sc.IsFuzzed {
				continue
			}
			fuzzedAny = true
			mutated, err := e.Mutator.Mutate(ctx, seed, sc.GetAltered())
			if err != nil {
				return err
			}
			sc.SetAltered(mutated)
		}
	}

	if m.HasSubcomponents() {
		for subIdx, sc := range m.Subcomponents {
			cbCtx := callback.Context{
				MessageIndex:          index,
				SubcomponentIndex:     subIdx,
				IsFuzzed:              sc.IsFuzzed,
				OriginalSubcomponents: original,
				ActualSubcomponents:   snapshot(m.Subcomponents),
			}
			out, err := e.Processor.PreSendSubcomponentProcess(sc.GetAltered(), cbCtx)
			if err != nil {
				return err
			}
			sc.SetAltered(out)
		}
	}

	cbCtx := callback.Context{
		MessageIndex:          index,
		SubcomponentIndex:     -1,
		IsFuzzed:              m.IsFuzzed,
		OriginalSubcomponents: original,
		ActualSubcomponents:   snapshot(m.Subcomponents),
	}
	payload, err := e.Processor.PreSendProcess(m.GetAlteredMessage(), cbCtx)
	if err != nil {
		return err
	}

	if err := conn.Send(ctx, payload); err != nil {
		return err
	}

	if e.DumpDir != nil {
		if err := e.DumpDir.WriteOutbound(index, seed, fuzzedAny, payload); err != nil {
			return &ferrors.NetworkError{Operation: "dumpraw write outbound", Err: err}
		}
	}
	return nil
}

func (e *Engine) receiveMessage(ctx context.Context, conn transport.Conn, index, seed int, m *script.Message) error {
	hint := len(m.GetAlteredMessage())
	data, err := conn.Receive(ctx, hint)
	if err != nil {
		return err
	}
	m.Received = data

	if bytes.Equal(data, m.GetAlteredMessage()) {
		e.logger().Info("received bytes match scripted expectation", "message", index)
	}

	e.Sink.RecordInboundData(index, data)

	cbCtx := callback.Context{MessageIndex: index, SubcomponentIndex: -1}
	if err := e.Processor.PostReceiveProcess(data, cbCtx); err != nil {
		return err
	}

	if e.DumpDir != nil {
		if err := e.DumpDir.WriteInbound(index, seed, data); err != nil {
			return &ferrors.NetworkError{Operation: "dumpraw write inbound", Err: err}
		}
	}
	return nil
}

// snapshot copies the current altered bytes of every subcomponent into a
// fresh slice of Subcomponent values so a callback sees a stable view of
// "actual" state as of the moment it was snapshotted, per the ordering
// guarantee that earlier callbacks' edits in the same iteration are visible.
func snapshot(subs []*script.Subcomponent) []*script.Subcomponent {
	out := make([]*script.Subcomponent, len(subs))
	for i, sc := range subs {
		out[i] = &script.Subcomponent{
			Original: sc.GetOriginal(),
			Altered:  append([]byte(nil), sc.GetAltered()...),
			IsFuzzed: sc.IsFuzzed,
		}
	}
	return out
}
