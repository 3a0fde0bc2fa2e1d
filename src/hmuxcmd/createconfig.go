package hmuxcmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.inet256.org/hmux/src/hmuxd"
)

func newCreateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-config",
		Short: "creates a new default config and writes it to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(hmuxd.DefaultConfig())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, err = out.Write(data)
			return err
		},
	}
}
