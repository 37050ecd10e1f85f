package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
	"github.com/wippyai/wasm-jit-runtime/wazerohost"
)

type invokeOptions struct {
	native      string
	args        []string
	hosts       []string
	configPath  string
	interactive bool
}

func newInvokeCommand() *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke <module>",
		Short: "Call a native import of a module through the runtime trampoline.",
		Long: "Instantiates the module, serves its native imports from wasm host modules\n" +
			"run under wazero and calls one import the way generated code would.",
		Example: "jitrt invoke prog.mod --host env=add.wasm --native env.add --args 10,20\n" +
			"jitrt invoke prog.mod --host env=add.wasm -i",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.native, "native", "", "import id or module.field to call")
	f.StringSliceVar(&opts.args, "args", nil, "arguments, parsed with the import's declared kinds")
	f.StringArrayVar(&opts.hosts, "host", nil, "host module as name=file.wasm (repeatable)")
	f.StringVar(&opts.configPath, "config", "", "runtime config YAML")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "interactive mode with TUI")
	return cmd
}

type session struct {
	rt     *runtime.Runtime
	host   *wazerohost.Host
	module *wasm.Module
}

func (s *session) Close(ctx context.Context) {
	s.rt.Close()
	_ = s.host.Close(ctx)
}

func openSession(ctx context.Context, modulePath, configPath string, hosts []string) (s *session, err error) {
	m, err := loadModule(modulePath)
	if err != nil {
		return nil, err
	}

	cfg := runtime.DefaultConfig()
	if configPath != "" {
		if cfg, err = runtime.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	host := wazerohost.New(ctx)
	for _, ref := range hosts {
		name, file, ok := strings.Cut(ref, "=")
		if !ok {
			_ = host.Close(ctx)
			return nil, fmt.Errorf("--host %q: want name=file.wasm", ref)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			_ = host.Close(ctx)
			return nil, fmt.Errorf("read host module: %w", err)
		}
		if err := host.Instantiate(ctx, name, data); err != nil {
			_ = host.Close(ctx)
			return nil, err
		}
	}

	defer func() {
		if err != nil {
			_ = host.Close(ctx)
		}
	}()
	defer runtime.Capture(&err)

	rt := runtime.New(cfg, m, runtime.WithNativeResolver(host))
	return &session{rt: rt, host: host, module: m}, nil
}

func runInvoke(cmd *cobra.Command, modulePath string, opts *invokeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(ctx, modulePath, opts)
	}
	if opts.native == "" {
		return fmt.Errorf("--native is required without -i")
	}

	s, err := openSession(ctx, modulePath, opts.configPath, opts.hosts)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.rt.ResolveNatives(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	id, err := findNative(s.module, opts.native)
	if err != nil {
		return err
	}
	sig, _ := s.module.NativeType(uint32(id))
	args, err := parseArgs(opts.args, sig)
	if err != nil {
		return err
	}

	res, err := callNative(s.rt, id, args)
	if err != nil {
		return err
	}
	n := s.module.Natives[id]
	fmt.Fprintf(cmd.OutOrStdout(), "%s.%s%s = %s\n", n.Module, n.Field, formatArgs(args), formatResult(res))
	return nil
}

func formatArgs(args []wasm.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatResult(v wasm.Value) string {
	if v.IsUndefined() {
		return "()"
	}
	return v.String()
}
