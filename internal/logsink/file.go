package logsink

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

// FileSink persists one transcript file per logged iteration under
// <script-stem>_logs/<YYYY-MM-DD,HHMMSS>/<iteration>-<reasonLabel>.log. A
// collision-proof uuid suffix is appended only when two transcripts would
// otherwise land on the same iteration/reason pair within one run (this can
// happen in log-all mode when the same iteration is run again after a retry
// or a crash below the failure threshold).
type FileSink struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	inbound  map[int][]byte
	highest  int
	seenName map[string]bool
}

// New creates the log directory for scriptPath at startTime and returns a
// ready-to-use FileSink.
func New(scriptPath string, startTime time.Time, opts ...Option) (*FileSink, error) {
	stem := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	dir := filepath.Join(fmt.Sprintf("%s_logs", stem), startTime.Format("2006-01-02,150405"))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	s := &FileSink{
		dir:      dir,
		logger:   slog.Default(),
		inbound:  make(map[int][]byte),
		seenName: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Info("log directory created", "dir", dir)
	return s, nil
}

func (s *FileSink) StartNewRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbound = make(map[int][]byte)
	s.highest = 0
}

func (s *FileSink) RecordInboundData(messageIndex int, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbound[messageIndex] = append([]byte(nil), data...)
}

func (s *FileSink) RecordHighestMessageIndex(messageIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messageIndex > s.highest {
		s.highest = messageIndex
	}
}

func (s *FileSink) EmitTranscript(iterationIndex int, messages *script.Collection, reasonLabel string) error {
	return s.write(iterationIndex, messages, reasonLabel, true)
}

// EmitPreviousTranscript takes inbound bytes from previousMessages only; the
// data recorded via RecordInboundData belongs to the current run.
func (s *FileSink) EmitPreviousTranscript(iterationIndex int, previousMessages *script.Collection, reasonLabel string) error {
	return s.write(iterationIndex, previousMessages, reasonLabel, false)
}

func (s *FileSink) write(iterationIndex int, messages *script.Collection, reasonLabel string, useRecorded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%d-%s.log", iterationIndex, reasonLabel)
	if s.seenName[name] {
		name = fmt.Sprintf("%d-%s-%s.log", iterationIndex, reasonLabel, uuid.NewString())
		s.logger.Warn("transcript name collision, disambiguating with uuid", "name", name)
	}
	s.seenName[name] = true

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "iteration %d (%s)\n", iterationIndex, reasonLabel)
	if messages != nil {
		for i, m := range messages.Messages {
			fmt.Fprintf(&buf, "--- message %d (%s) ---\n", i, m.Direction)
			if m.Direction == script.Outbound {
				buf.Write(m.GetAlteredMessage())
			} else if data, ok := s.inbound[i]; ok && useRecorded {
				buf.Write(data)
			} else {
				buf.Write(m.Received)
			}
			buf.WriteByte('\n')
		}
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	return nil
}

var _ Sink = (*FileSink)(nil)
