package shell

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/dirstack"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/vos"
)

func init() {
	vos.RegisterChildMain(childMain)
}

// forkPayload is the state a forked child shell starts from.
type forkPayload struct {
	Tree     json.RawMessage       `json:"tree"`
	Redirect *ast.Redirect         `json:"redirect,omitempty"`
	Dirs     []string              `json:"dirs,omitempty"`
	Status   int                   `json:"status"`
	Config   *config.Configuration `json:"config"`
	Session  string                `json:"session,omitempty"`
}

// fork starts a child shell that runs node with the given standard streams,
// after applying redirect to them.
func (s *Shell) fork(node ast.Node, redirect *ast.Redirect, streams vos.VIO) (vos.Process, error) {
	tree, err := ast.Marshal(node)
	if err != nil {
		return nil, err
	}

	cfg := *s.Config
	cfg.EventLog = s.Config.EventLogPath()

	payload, err := json.Marshal(&forkPayload{
		Tree:     tree,
		Redirect: redirect,
		Dirs:     s.Dirs.Entries(),
		Status:   s.status,
		Config:   &cfg,
		Session:  s.session,
	})
	if err != nil {
		return nil, err
	}

	return s.OS.Fork(payload, &vos.ProcAttr{Files: streams})
}

func childMain(child vos.VOS, payload []byte) int {
	var p forkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		fmt.Fprintf(child.Stderr(), "minish: fork: %v\n", err)
		return StatusUsage
	}

	tree, err := ast.Unmarshal(p.Tree)
	if err != nil {
		fmt.Fprintf(child.Stderr(), "minish: fork: %v\n", err)
		return StatusUsage
	}

	opts := []Option{
		WithConfig(p.Config),
		WithDirStack(dirstack.FromEntries(p.Dirs)),
		WithStatus(p.Status),
	}
	if p.Config != nil && p.Config.EventLog != "" {
		logFd, err := child.FS().OpenFile(p.Config.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err == nil {
			defer logFd.Close()
			opts = append(opts, WithEvents(logger.NewJsonLinesLogRecorder(logFd).Session(p.Session)))
		}
	}

	sh := New(child, opts...)
	defer sh.Close()

	if p.Redirect != nil {
		streams, release, err := sh.openRedirect(*p.Redirect)
		if err != nil {
			sh.errorf("%v", err)
			return StatusFailure
		}
		defer release()
		sh.streams = streams
	}

	status := sh.dispatch(tree)
	sh.reap()
	return status
}
