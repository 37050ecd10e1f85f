package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "jitrt <command> [arguments]",
		Short:         "Inspect runtime modules and call their native imports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "jitrt invoke prog.mod --native env.add --args 10,20 --host env=add.wasm",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			runtime.SetLogger(l)
			wasm.SetLogger(l)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(newInspectCommand())
	root.AddCommand(newInvokeCommand())
	return root
}
