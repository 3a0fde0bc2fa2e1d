package hmuxcmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"

	"go.inet256.org/hmux/src/hmuxd"
)

func newDaemonCmd() *cobra.Command {
	var configPath string
	c := &cobra.Command{
		Use:   "daemon",
		Short: "Runs the hmux daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return errors.New("must provide config path")
			}
			config, err := hmuxd.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logctx.Infof(ctx, "using config from path: %v", configPath)
			params, err := hmuxd.MakeParams(*config)
			if err != nil {
				return err
			}
			d := hmuxd.New(*params)
			return d.Run(ctx)
		},
	}
	c.Flags().StringVar(&configPath, "config", "", "--config=./path/to/config.yaml")
	return c
}
