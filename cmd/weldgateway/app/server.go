package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"weldgateway/cmd/weldgateway/options"
	"weldgateway/pkg/generic"
	baseoptions "weldgateway/pkg/generic/options"
	"weldgateway/pkg/web"

	utilserrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
)

const (
	ComponentGateway = "weldgateway"
)

func NewGatewayCmd() *cobra.Command {
	cleanFlagSet := pflag.NewFlagSet(ComponentGateway, pflag.ContinueOnError)
	o := options.NewDefaultOptions()
	cmd := &cobra.Command{
		Use:                ComponentGateway,
		Long:               `The weldgateway polls iDock welding controllers over Modbus, classifies machine and welding status, and forwards measurements and status changes to an ingestion endpoint.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// initial flag parse, since we disable cobra's flag parsing
			if err := cleanFlagSet.Parse(args); err != nil {
				klog.ErrorS(err, "Failed to parse flag")
				_ = cmd.Usage()
				os.Exit(1)
			}

			// check if there are non-flag arguments in the command line
			cmds := cleanFlagSet.Args()
			if len(cmds) > 0 {
				klog.ErrorS(nil, "Unknown command", "command", cmds[0])
				_ = cmd.Usage()
				os.Exit(1)
			}

			// short-circuit on help
			baseoptions.PrintHelpAndExitIfRequested(cmd, cleanFlagSet)

			// short-circuit on defaultconfig
			baseoptions.PrintDefaultConfigAndExitIfRequested(options.NewDefaultOptions(), cleanFlagSet)

			if err := baseoptions.ParseAndApplyConfigFile(o, args); err != nil {
				return err
			}

			if errs := options.Validate(o); len(errs) != 0 {
				return utilserrors.NewAggregate(errs)
			}

			return run(o)
		},
	}

	o.AddFlags(cleanFlagSet)
	o.AddBaseFlags(cmd, cleanFlagSet)

	return cmd
}

func run(o *options.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := o.Config(ctx)
	if err != nil {
		return err
	}

	server, err := web.NewServer(generic.Default(), o.Port, c)
	if err != nil {
		return err
	}

	exit, err := server.Serve()
	if err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), o.Wait.Duration)
		defer stopCancel()
		if stopErr := c.DeviceMgr.Shutdown(stopCtx); stopErr != nil {
			klog.ErrorS(stopErr, "Failed to stop collectors")
		}
		return err
	}
	klog.V(1).InfoS("Server started", "port", o.Port, "devices", len(o.Devices))

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	exitCh := make(chan os.Signal, 1)
	signal.Notify(exitCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exitCh
	klog.InfoS("Shutting down", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), o.Wait.Duration)
	defer shutdownCancel()

	exit(shutdownCtx)
	return nil
}
