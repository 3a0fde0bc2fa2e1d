package hmuxcmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
)

var ctx = func() context.Context {
	ctx := context.Background()
	l, _ := zap.NewProduction()
	ctx = logctx.NewContext(ctx, l)
	return ctx
}()

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "hmux",
		Short: "hmux: one listener for gRPC and web traffic",
	}
	c.AddCommand(newDaemonCmd())
	c.AddCommand(newCreateConfigCmd())
	return c
}
