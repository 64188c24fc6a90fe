package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/josephlewis42/minish/core/vos"
)

// Sleep pauses for the sum of its operands, given in seconds.
func Sleep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sleep NUMBER...",
		Short: "Pause for NUMBER seconds.",
	}

	return cmd.RunE(virtOS, func() error {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			return fmt.Errorf("missing operand")
		}

		var total time.Duration
		for _, arg := range args {
			secs, err := strconv.ParseFloat(arg, 64)
			if err != nil || secs < 0 {
				return fmt.Errorf("invalid time interval %q", arg)
			}
			total += time.Duration(secs * float64(time.Second))
		}

		time.Sleep(total)
		return nil
	})
}

var _ vos.ProcessFunc = Sleep

func init() {
	mustAddBinCmd("sleep", Sleep)
}
