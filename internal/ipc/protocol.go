// Package ipc forwards control commands to the running interview over a unix socket.
package ipc

// Commands understood by the interview owner.
const (
	CommandRecord     = "record"
	CommandStop       = "stop"
	CommandCancel     = "cancel"
	CommandEnd        = "end"
	CommandStatus     = "status"
	CommandTranscript = "transcript"
)

// Request is one newline-delimited JSON command.
type Request struct {
	Command string `json:"command"`
}

// Response is the owner's reply. Phase and Capture describe state after the command ran.
type Response struct {
	OK      bool   `json:"ok"`
	Phase   string `json:"phase,omitempty"`
	Capture string `json:"capture,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// State renders phase/capture for display.
func (r Response) State() string {
	switch {
	case r.Phase == "" && r.Capture == "":
		return ""
	case r.Capture == "":
		return r.Phase
	default:
		return r.Phase + "/" + r.Capture
	}
}
