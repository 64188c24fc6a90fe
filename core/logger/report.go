package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{
		ExecFailures:     NewPathCounter("command", "status", "error"),
		ResourceFailures: NewPathCounter("op", "error"),
	}
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	EventTypes     StrCounter `json:"event_types"`
	InvalidEntries int        `json:"invalid_entries,omitempty"`

	Commands CommandReport `json:"command_report"`
	Jobs     JobReport     `json:"job_report"`
	Builtins BuiltinReport `json:"builtin_report"`

	ExecFailures     *PathCounter `json:"exec_failures"`
	ResourceFailures *PathCounter `json:"resource_failures"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if id := le.GetSessionId(); id != "" {
		r.Sessions.Increment(id)
	}

	event := le.GetLogType()
	if event == nil {
		r.InvalidEntries++
		return
	}
	r.EventTypes.Increment(event.EventType())

	switch event := event.(type) {
	case *CommandFinished:
		r.Commands.update(event)
	case *ExecFailure:
		name := ""
		if len(event.Command) > 0 {
			name = event.Command[0]
		}
		r.ExecFailures.Increment(name, strconv.Itoa(event.Status), event.Error)
	case *JobBackgrounded:
		r.Jobs.Backgrounded++
	case *JobCompleted:
		r.Jobs.update(event)
	case *Builtin:
		r.Builtins.update(event)
	case *ResourceFailure:
		r.ResourceFailures.Increment(event.Op, event.Error)
	case *CommandStarted:
		// Counted in EventTypes.
	}
}

type CommandReport struct {
	// Number of finished top-level commands.
	Count int `json:"count"`
	// Exit statuses and their counts.
	Statuses StrCounter `json:"statuses"`
	// Commands that finished with a non-zero status and their counts.
	Failed StrCounter `json:"failed"`
}

func (r *CommandReport) update(cf *CommandFinished) {
	r.Count++
	r.Statuses.Increment(strconv.Itoa(cf.Status))
	if cf.Status != 0 {
		r.Failed.Increment(cf.Command)
	}
}

type JobReport struct {
	Backgrounded int        `json:"backgrounded"`
	Completed    int        `json:"completed"`
	Statuses     StrCounter `json:"statuses"`
}

func (r *JobReport) update(jc *JobCompleted) {
	r.Completed++
	r.Statuses.Increment(strconv.Itoa(jc.Status))
}

type BuiltinReport struct {
	Names    StrCounter `json:"names"`
	Failures StrCounter `json:"failures"`
}

func (r *BuiltinReport) update(b *Builtin) {
	r.Names.Increment(b.Name)
	if b.Status != 0 {
		r.Failures.Increment(b.Name)
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Len returns the number of distinct paths counted.
func (ctr *PathCounter) Len() int {
	return len(ctr.internal)
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
