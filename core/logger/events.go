package logger

// LogEntry is a single line of the event log. Exactly one of the event fields
// is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionId       string `json:"session_id,omitempty"`

	CommandStarted  *CommandStarted  `json:"command_started,omitempty"`
	CommandFinished *CommandFinished `json:"command_finished,omitempty"`
	ExecFailure     *ExecFailure     `json:"exec_failure,omitempty"`
	JobBackgrounded *JobBackgrounded `json:"job_backgrounded,omitempty"`
	JobCompleted    *JobCompleted    `json:"job_completed,omitempty"`
	Builtin         *Builtin         `json:"builtin,omitempty"`
	ResourceFailure *ResourceFailure `json:"resource_failure,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	// EventType is the JSON name of the event.
	EventType() string
	setOn(le *LogEntry)
}

// GetLogType returns the event held by the entry or nil if there is none.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.CommandStarted != nil:
		return le.CommandStarted
	case le.CommandFinished != nil:
		return le.CommandFinished
	case le.ExecFailure != nil:
		return le.ExecFailure
	case le.JobBackgrounded != nil:
		return le.JobBackgrounded
	case le.JobCompleted != nil:
		return le.JobCompleted
	case le.Builtin != nil:
		return le.Builtin
	case le.ResourceFailure != nil:
		return le.ResourceFailure
	default:
		return nil
	}
}

func (le *LogEntry) GetSessionId() string {
	if le == nil {
		return ""
	}
	return le.SessionId
}

// CommandStarted is logged before a top-level command runs.
type CommandStarted struct {
	Command string `json:"command"`
}

func (*CommandStarted) EventType() string     { return "command_started" }
func (e *CommandStarted) setOn(le *LogEntry) { le.CommandStarted = e }

// CommandFinished is logged after a top-level command and the reaper ran.
type CommandFinished struct {
	Command        string `json:"command"`
	Status         int    `json:"status"`
	DurationMicros int64  `json:"duration_micros"`
}

func (*CommandFinished) EventType() string     { return "command_finished" }
func (e *CommandFinished) setOn(le *LogEntry) { le.CommandFinished = e }

// ExecFailure is logged when a program couldn't be started.
type ExecFailure struct {
	Command []string `json:"command"`
	Status  int      `json:"status"`
	Error   string   `json:"error"`
}

func (*ExecFailure) EventType() string     { return "exec_failure" }
func (e *ExecFailure) setOn(le *LogEntry) { le.ExecFailure = e }

// JobBackgrounded is logged when a command is started without waiting.
type JobBackgrounded struct {
	Pid     int    `json:"pid"`
	Command string `json:"command"`
}

func (*JobBackgrounded) EventType() string     { return "job_backgrounded" }
func (e *JobBackgrounded) setOn(le *LogEntry) { le.JobBackgrounded = e }

// JobCompleted is logged when the reaper collects a finished child.
type JobCompleted struct {
	Pid    int `json:"pid"`
	Status int `json:"status"`
}

func (*JobCompleted) EventType() string     { return "job_completed" }
func (e *JobCompleted) setOn(le *LogEntry) { le.JobCompleted = e }

// Builtin is logged after a builtin runs.
type Builtin struct {
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
	Status int      `json:"status"`
}

func (*Builtin) EventType() string     { return "builtin" }
func (e *Builtin) setOn(le *LogEntry) { le.Builtin = e }

// ResourceFailure is logged when a pipe, fork or temporary file couldn't be
// created.
type ResourceFailure struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

func (*ResourceFailure) EventType() string     { return "resource_failure" }
func (e *ResourceFailure) setOn(le *LogEntry) { le.ResourceFailure = e }
