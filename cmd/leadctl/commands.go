package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/upb/lead-gateway/app"
	"github.com/upb/lead-gateway/config"
	"github.com/upb/lead-gateway/internal/observability"
	"github.com/upb/lead-gateway/services/providers"
)

// dependencyLoader builds the same wiring the server uses
type dependencyLoader func(ctx context.Context) (*app.Dependencies, error)

func loadDependencies(ctx context.Context) (*app.Dependencies, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, "console")
	if err != nil {
		return nil, err
	}
	return app.NewDependencies(ctx, cfg, logger)
}

func newRootCmd(out io.Writer, load dependencyLoader) *cobra.Command {
	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Lead content gateway CLI",
		Long: `Run lead summaries and outreach content generation against the
providers configured for the gateway, without starting the HTTP server.

Provider settings come from the same environment and providers file
the api-gateway reads.`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.AddCommand(newProvidersCmd(load), newSummaryCmd(load), newContentCmd(load))
	return root
}

// --- providers command ---

func newProvidersCmd(load dependencyLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			if len(deps.ProviderInfo) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers configured.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVENDOR\tMODEL\tEMBEDDINGS")
			for _, p := range deps.ProviderInfo {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", p.Name, p.Vendor, p.Model, p.Embeddings)
			}
			return tw.Flush()
		},
	}
}

// --- summary command ---

func newSummaryCmd(load dependencyLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize a lead read from a JSON file",
		Long: `Summarize a lead record with the named provider and print the
result envelope. Use --file - to read the lead from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			file, _ := cmd.Flags().GetString("file")

			var lead providers.Lead
			if err := readJSON(cmd.InOrStdin(), file, &lead); err != nil {
				return err
			}

			deps, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			env, err := deps.Leads.GetSummary(cmd.Context(), model, lead)
			if err != nil {
				return err
			}
			return printEnvelope(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().String("model", "", "provider name, as sent in the model header")
	cmd.Flags().StringP("file", "f", "-", "lead JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// --- content command ---

func newContentCmd(load dependencyLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Generate outreach content for a lead read from a JSON file",
		Long: `Render a personalized email or WhatsApp message for a lead and print
the result envelope. The file holds the lead record itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			contentType, _ := cmd.Flags().GetString("type")
			file, _ := cmd.Flags().GetString("file")

			var lead providers.Lead
			if err := readJSON(cmd.InOrStdin(), file, &lead); err != nil {
				return err
			}

			deps, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close(cmd.Context())

			env, err := deps.Leads.GetContent(cmd.Context(), model, providers.ContentRequest{
				ContentType: contentType,
				Lead:        lead,
			})
			if err != nil {
				return err
			}
			return printEnvelope(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().String("model", "", "provider name, as sent in the model header")
	cmd.Flags().StringP("type", "t", providers.ContentTypeEmail, "content type (personalized email, whatsapp message)")
	cmd.Flags().StringP("file", "f", "-", "lead JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func readJSON(stdin io.Reader, path string, dst any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decoding lead JSON: %w", err)
	}
	return nil
}

// printEnvelope writes the envelope and turns a failure into a non-zero exit
func printEnvelope(out io.Writer, env *providers.Envelope) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return err
	}
	if !env.OK && env.Error != nil {
		return fmt.Errorf("%s: %s", env.Error.Kind, env.Error.Message)
	}
	return nil
}
