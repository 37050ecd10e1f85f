package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-jit-runtime/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newInspectCommand() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:     "inspect <module>",
		Short:   "Summarize an encoded module.",
		Example: "jitrt inspect prog.mod --validate",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), args[0], m)
			if validate {
				if err := m.Validate(); err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), funcStyle.Render("valid"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "check every index the module references")
	return cmd
}

func printSummary(w io.Writer, name string, m *wasm.Module) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Module"))
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("\n")

	section := func(title string, n int) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", title, n)))
		b.WriteString("\n")
	}

	section("Types", len(m.Types))
	for i, t := range m.Types {
		fmt.Fprintf(&b, "  %d: %s\n", i, typeStyle.Render(t.String()))
	}

	section("Functions", len(m.Functions))
	for i, f := range m.Functions {
		sig := "?"
		if t, ok := m.Signature(uint32(i)); ok {
			sig = t.String()
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			funcStyle.Render(fmt.Sprintf("func[%d]", i)),
			typeStyle.Render(sig),
			dimStyle.Render(fmt.Sprintf("%d locals, %d instructions", len(f.Locals), len(f.Body))))
	}

	section("Natives", len(m.Natives))
	for i, n := range m.Natives {
		sig := "?"
		if t, ok := m.NativeType(uint32(i)); ok {
			sig = t.String()
		}
		fmt.Fprintf(&b, "  %d: %s %s\n", i, funcStyle.Render(n.Module+"."+n.Field), typeStyle.Render(sig))
	}

	section("Globals", len(m.Globals))
	for i, g := range m.Globals {
		fmt.Fprintf(&b, "  %d: %s\n", i, g.Value)
	}

	section("Tables", len(m.Tables))
	for i, t := range m.Tables {
		entries := make([]string, len(t.Elements))
		for j, e := range t.Elements {
			if e == nil {
				entries[j] = "-"
			} else {
				entries[j] = fmt.Sprint(*e)
			}
		}
		fmt.Fprintf(&b, "  %d: [%s]\n", i, strings.Join(entries, " "))
	}

	section("Data", len(m.DataSegments))
	for _, d := range m.DataSegments {
		fmt.Fprintf(&b, "  offset %d: %d bytes\n", d.Offset, len(d.Data))
	}

	fmt.Fprint(w, b.String())
}
