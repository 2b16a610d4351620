// Package cmd provides command-line interface commands for the forensics service.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"forensics/config"
	"forensics/threat"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

const defaultTimeout = 30 * time.Second

// intelOptions are the persistent flags shared by every intel subcommand
type intelOptions struct {
	outputJSON bool
	configFile string
	noColor    bool
	quiet      bool
	timeout    time.Duration
}

// serviceLoader builds the reputation service a command queries
type serviceLoader func(opts *intelOptions) (*threat.Service, error)

// loadIntelService builds the service from config. The feature flag gates the
// HTTP API only, so the CLI always queries whichever providers have keys.
func loadIntelService(opts *intelOptions) (*threat.Service, error) {
	v := viper.New()
	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	providers := threat.ProvidersFromConfig(cfg.ThreatIntel)
	if len(providers) == 0 {
		return nil, fmt.Errorf("no threat intelligence provider configured: set VIRUSTOTAL_API_KEY, ABUSEIPDB_API_KEY or GREYNOISE_API_KEY")
	}
	return threat.NewService(true, providers, threat.ServiceOptions{
		CacheTTL:  cfg.ThreatIntel.CacheTTL,
		CacheSize: cfg.ThreatIntel.CacheSize,
	}, zap.NewNop().Sugar()), nil
}

// NewIntelCmd creates the root intel command with all subcommands.
func NewIntelCmd() *cobra.Command {
	return newIntelCmd(loadIntelService)
}

func newIntelCmd(load serviceLoader) *cobra.Command {
	opts := &intelOptions{}

	intelCmd := &cobra.Command{
		Use:   "intel",
		Short: "Look up indicator reputation",
		Long: `Query the configured threat intelligence providers for the reputation of an
IP address, file hash or domain, or resolve a MITRE ATT&CK technique.

Providers are enabled by their API keys (VirusTotal, AbuseIPDB, GreyNoise).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	intelCmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output in JSON format")
	intelCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (default: ./config.yaml if present)")
	intelCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	intelCmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Suppress non-essential output")
	intelCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "Lookup timeout")

	intelCmd.AddCommand(newLookupCmd(opts, load, "ip <address>", "Check IP address reputation", (*threat.Service).CheckIP))
	intelCmd.AddCommand(newLookupCmd(opts, load, "hash <md5|sha1|sha256>", "Check file hash reputation", (*threat.Service).CheckHash))
	intelCmd.AddCommand(newLookupCmd(opts, load, "domain <name>", "Check domain reputation", (*threat.Service).CheckDomain))
	intelCmd.AddCommand(newMitreCmd(opts))

	return intelCmd
}

type lookupFunc func(s *threat.Service, ctx context.Context, value string) (*threat.Reputation, error)

// newLookupCmd creates one reputation subcommand
func newLookupCmd(opts *intelOptions, load serviceLoader, use, short string, lookup lookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			svc, err := load(opts)
			if err != nil {
				return err
			}

			if !opts.quiet && !opts.outputJSON {
				infoColor.Fprintf(out, "Querying %v\n", svc.ProviderNames())
			}

			var s *spinner.Spinner
			if !opts.outputJSON && !opts.quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
				s.Suffix = " Looking up " + args[0] + "..."
				s.Start()
			}

			rep, err := lookup(svc, ctx, args[0])

			if s != nil {
				s.Stop()
			}

			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}

			if opts.outputJSON {
				return outputAsJSON(out, rep)
			}
			renderReputation(out, rep)
			return nil
		},
	}
}

// newMitreCmd creates the 'mitre' subcommand. It needs no provider.
func newMitreCmd(opts *intelOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mitre <technique-id>",
		Short: "Resolve a MITRE ATT&CK technique reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := threat.NewService(true, nil, threat.ServiceOptions{}, zap.NewNop().Sugar())
			info, err := svc.GetMitreInfo(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return outputAsJSON(out, info)
			}
			printField(out, "Technique", info.ID)
			printField(out, "Reference", info.URL)
			return nil
		},
	}
}

// outputAsJSON writes v as indented JSON
func outputAsJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
