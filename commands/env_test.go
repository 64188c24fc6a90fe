package commands

import (
	"testing"

	"github.com/josephlewis42/minish/core/vos/vostest"
	"github.com/stretchr/testify/assert"
)

func TestEnv_contents(t *testing.T) {
	cmd := vostest.Command(Env, "env")
	cmd.Env = []string{"C=charlie", "A=alpha", "PATH=" + vostest.Path, "B=bravo"}

	out, err := cmd.CombinedOutput()

	assert.Equal(t, 0, cmd.ExitStatus, "exit code")
	assert.Nil(t, err)
	assert.Equal(t, "A=alpha\nB=bravo\nC=charlie\nPATH="+vostest.Path+"\n", string(out))
}

func TestEnv_operands(t *testing.T) {
	cmd := vostest.Command(Env, "env", "-i", "B=2", "A=1")

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Equal(t, "A=1\nB=2\n", string(out))
}

func TestEnv_utility(t *testing.T) {
	cmd := vostest.Command(Env, "env", "ls")

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus)
	assert.Equal(t, "env: running \"ls\" isn't supported\n", string(out))
}

func TestPwd(t *testing.T) {
	cmd := vostest.Command(Pwd, "pwd")
	cmd.Dir = "/tmp"

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, "/tmp\n", string(out))
}

func TestNoOp(t *testing.T) {
	for name, want := range map[string]int{"true": 0, "false": 1} {
		cmd := vostest.Command(AllCommands["/bin/"+name], name, "--ignored")
		assert.Nil(t, cmd.Run())
		assert.Equal(t, want, cmd.ExitStatus, name)
	}
}

func TestSleep_invalid(t *testing.T) {
	cmd := vostest.Command(Sleep, "sleep", "soon")

	out, err := cmd.CombinedOutput()

	assert.Nil(t, err)
	assert.Equal(t, 1, cmd.ExitStatus)
	assert.Equal(t, "sleep: invalid time interval \"soon\"\n", string(out))
}
