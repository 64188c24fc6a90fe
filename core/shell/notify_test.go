package shell

import (
	"bytes"
	"testing"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/vos"
	"github.com/josephlewis42/minish/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestColorPrinter(t *testing.T) {
	out := &bytes.Buffer{}

	always := newColorPrinter(config.ColorAlways, out)
	assert.Contains(t, always.Sprintf(always.failure, "x"), "\x1b[")

	never := newColorPrinter(config.ColorNever, out)
	assert.Equal(t, "x", never.Sprintf(never.failure, "x"))

	// Buffers are never terminals.
	auto := newColorPrinter(config.ColorAuto, out)
	assert.Equal(t, "x", auto.Sprintf(auto.notice, "x"))
}

func TestNotifyBackgroundDisabled(t *testing.T) {
	errs := &vostest.SyncBuffer{}
	sim := vostest.NewDeterministicOS(nil)
	sim.SetIO(vos.NewVIOAdapter(nil, nil, errs))

	cfg := config.DefaultConfig()
	cfg.NotifyBackground = false
	s := New(sim, WithConfig(cfg))

	s.noticef("[%d] backgrounded", 1)
	s.errorf("still %s", "shown")
	assert.Equal(t, "minish: still shown\n", errs.String())
}

func TestStatusOf(t *testing.T) {
	s := New(vostest.NewDeterministicOS(nil))

	assert.Equal(t, 7, s.statusOf(vos.Exit{Code: 7}))
	assert.Equal(t, 128+int(unix.SIGKILL), s.statusOf(vos.Exit{Signaled: true, Signal: unix.SIGKILL}))
}

func TestChildMainBadPayload(t *testing.T) {
	errs := &vostest.SyncBuffer{}
	sim := vostest.NewDeterministicOS(nil)
	sim.SetIO(vos.NewVIOAdapter(nil, nil, errs))

	assert.Equal(t, StatusUsage, childMain(sim, []byte("not json")))
	assert.Contains(t, errs.String(), "minish: fork: ")
}

func TestForkCarriesState(t *testing.T) {
	out := &vostest.SyncBuffer{}
	sim := vostest.NewDeterministicOS(map[string]vos.ProcessFunc{
		"/bin/status": func(p vos.VOS) int {
			p.Stdout().Write([]byte(p.Getenv(EnvLastStatus)))
			return 0
		},
	})
	sim.SetIO(vos.NewVIOAdapter(nil, out, nil))

	s := New(sim, WithStatus(9))
	s.Dirs.Push("/tmp")

	proc, err := s.fork(&ast.Sequence{
		Left:  ast.Command("status"),
		Right: ast.Command("dirs"),
	}, nil, s.streams)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.wait(proc))
	assert.Equal(t, "9/home/user /tmp\n", out.String())
}
