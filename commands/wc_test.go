package commands

import (
	"strings"
	"testing"

	"github.com/josephlewis42/minish/core/vos"
	"github.com/josephlewis42/minish/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestWc(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":  {[]string{"wc"}},
		"missing": {[]string{"wc", "does not exist.txt"}},
	}

	cases.Run(t, Wc)
}

func TestWc_single_file(t *testing.T) {
	cmd := vostest.Command(Wc, "wc", "/foo.txt")
	cmd.Setup = func(sim *vos.SimOS) error {
		return afero.WriteFile(sim.FS(), "/foo.txt", []byte("Hello,\nworld !"), 0600)
	}

	out, err := cmd.CombinedOutput()

	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Nil(t, err)
	assert.Equal(t, "1 3 14 /foo.txt\n", string(out))
}

func TestWc_lines(t *testing.T) {
	cmd := vostest.Command(Wc, "wc", "-l")
	cmd.Stdin = strings.NewReader("a\nb\nc\n")

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, "3\n", string(out))
}

func TestWc_total(t *testing.T) {
	cmd := vostest.Command(Wc, "wc", "-w", "/a.txt", "/b.txt")
	cmd.Setup = func(sim *vos.SimOS) error {
		if err := afero.WriteFile(sim.FS(), "/a.txt", []byte("one two\n"), 0600); err != nil {
			return err
		}
		return afero.WriteFile(sim.FS(), "/b.txt", []byte("three\n"), 0600)
	}

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Equal(t, "2 /a.txt\n1 /b.txt\n3 total\n", string(out))
}
