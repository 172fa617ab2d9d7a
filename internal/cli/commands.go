package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skosovsky/fncall/adapters/anthropic"
	"github.com/skosovsky/fncall/adapters/gemini"
	"github.com/skosovsky/fncall/adapters/openai"
)

// errRejected is returned by check when the arguments are rejected; the fault is already printed.
var errRejected = errors.New("arguments rejected")

func newListCommand(a *app) *cobra.Command {
	var prompt bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if prompt {
				fmt.Fprintln(out, a.caller.SystemPrompt())
				return nil
			}
			for _, fn := range a.caller.Registry().Describe() {
				fmt.Fprintf(out, "%s\t%s\n", fn.Name, fn.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prompt, "prompt", false, "print the system prompt listing instead")
	return cmd
}

func newDocsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs [name]",
		Short: "Render documentation for one function or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.caller.Registry().List()
			if len(args) == 1 {
				names = args
			}
			docs := make([]string, 0, len(names))
			for _, name := range names {
				doc, err := a.caller.Documentation(name)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			fmt.Fprint(cmd.OutOrStdout(), strings.Join(docs, "\n"))
			return nil
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name> <arguments-json>",
		Short: "Validate an argument payload against a function",
		Long: `check validates a JSON argument object the way a model call would be validated and
prints the result: the coerced arguments on success, or the structured error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.caller.DispatchJSON(cmd.Context(), "", args[0], []byte(args[1]))
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.OK() {
				return errRejected
			}
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tool definitions for a model provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := a.caller.Registry()
			var v any
			switch provider {
			case "openai":
				var opts []openai.Option
				if a.cfg.Strict {
					opts = append(opts, openai.WithStrict())
				}
				v = openai.Tools(reg, opts...)
			case "anthropic":
				v = anthropic.Tools(reg)
			case "gemini":
				v = gemini.Tools(reg)
			case "jsonschema":
				decls := make([]map[string]any, 0, reg.Len())
				for _, s := range reg.Schemas() {
					decls = append(decls, s.Declaration())
				}
				v = decls
			default:
				return fmt.Errorf("unknown provider %q (want openai, anthropic, gemini or jsonschema)", provider)
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "jsonschema", "openai, anthropic, gemini or jsonschema")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
