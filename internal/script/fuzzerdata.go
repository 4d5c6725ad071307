package script

import "time"

// Transport names one of the socket families the run engine can open.
// RawL3Proto and Iface are only meaningful for the corresponding transport.
type Transport int

const (
	TCP Transport = iota
	TLS
	UDP
	RawL3
	RawL2
	Unix
)

func (t Transport) String() string {
	switch t {
	case TCP:
		return "tcp"
	case TLS:
		return "tls"
	case UDP:
		return "udp"
	case RawL3:
		return "raw-L3"
	case RawL2:
		return "raw-L2"
	case Unix:
		return "unix"
	default:
		return "unknown"
	}
}

// FuzzerData is the fully-loaded configuration for one scripted
// conversation: everything needed to open a transport, replay the message
// collection, and decide how aggressively to retry after a crash.
//
// FuzzerData is constructed once from the script file before the first
// iteration and never mutated thereafter. Messages is deep-copied by the
// iteration controller at the start of every iteration.
type FuzzerData struct {
	Transport Transport `json:"transport"`
	// RawL3Proto names the IP protocol for Transport == RawL3: either a
	// literal protocol number, a name ("tcp", "udp", "icmp", ...), or the
	// literal "raw" (meaning IP_HDRINCL stays set, this engine writes its
	// own IP header).
	RawL3Proto string `json:"rawL3Proto,omitempty"`
	// Iface names the link-layer interface for Transport == RawL2.
	Iface string `json:"iface,omitempty"`

	Host           string  `json:"host"`
	Port           int     `json:"port"`
	SourceIP       string  `json:"sourceIP,omitempty"`
	SourcePort     int     `json:"sourcePort,omitempty"`
	ReceiveTimeout float64 `json:"receiveTimeout"`

	FailureThreshold int     `json:"failureThreshold"`
	FailureBackoff   float64 `json:"failureBackoff"`
	PerformDryRun    bool    `json:"performDryRun"`

	ProcessorDir string `json:"processorDir,omitempty"`

	Messages *Collection `json:"messageCollection"`
}

// ReceiveTimeoutDuration converts the fractional-seconds ReceiveTimeout into
// a time.Duration for use with the transport layer.
func (d *FuzzerData) ReceiveTimeoutDuration() time.Duration {
	return time.Duration(d.ReceiveTimeout * float64(time.Second))
}

// FailureBackoffDuration converts the fractional-seconds FailureBackoff into
// a time.Duration for use by the iteration controller's post-crash sleep.
func (d *FuzzerData) FailureBackoffDuration() time.Duration {
	return time.Duration(d.FailureBackoff * float64(time.Second))
}

// Clone deep-copies the FuzzerData, including its message collection. Every
// other field is a value type or an immutable string, so only Messages
// needs an explicit deep copy.
func (d *FuzzerData) Clone() *FuzzerData {
	cp := *d
	if d.Messages != nil {
		cp.Messages = d.Messages.Clone()
	}
	return &cp
}
