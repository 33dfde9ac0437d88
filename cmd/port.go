// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"footprint/cli/internal/assembly"
	"footprint/cli/internal/bridge"
	"footprint/cli/internal/config"
	"footprint/cli/internal/donation"
	"footprint/cli/internal/dsn"
	ferrors "footprint/cli/internal/errors"
	"footprint/cli/internal/keychain"
	"footprint/cli/internal/logging"
	"footprint/cli/internal/processing"
	"footprint/cli/internal/processing/wasm"
	"footprint/cli/internal/visualisation"
	"footprint/cli/internal/visualisation/console"
	"footprint/cli/internal/visualisation/web"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	portSurface   string
	portAddr      string
	portLocale    string
	portBridge    string
	portWASM      string
	portNoBrowser bool
)

// portCmd runs the donation flow: a worker issues pages, the chosen surface
// shows them and system commands go to the configured bridge.
var portCmd = &cobra.Command{
	Use:   "port",
	Short: "Run the data donation flow",
	Long: `The port command starts the data donation flow. By default it runs the built-in
script in this terminal; --surface web serves the same pages to your browser instead.
A WASI module given with --wasm replaces the built-in script.

Donations go to the configured bridge. The default bridge only logs them, so nothing
leaves your device until you configure one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPortFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		br, err := openBridge(ctx, cfg)
		if err != nil {
			if ferrors.IsKind(err, ferrors.BridgeFailed) {
				logging.PresentBridgeError(err.Error())
			}
			return err
		}

		worker, err := newWorker(cfg)
		if err != nil {
			_ = br.Close(ctx)
			return err
		}

		surface, err := newSurface(cfg, cancel)
		if err != nil {
			_ = worker.Close()
			_ = br.Close(ctx)
			return err
		}

		session := assembly.New(worker, visualisation.NewEngine(nil), surface, br, cfg.Locale)
		runErr := session.Run(ctx)
		termErr := session.Terminate()

		printSummary(session.Progress().Snapshot())
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		if termErr != nil {
			logging.With("port").Warnf("shutdown: %v", termErr)
		}
		return nil
	},
}

func applyPortFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("surface") {
		c.Surface = portSurface
	}
	if f.Changed("addr") {
		c.Web.Addr = portAddr
	}
	if f.Changed("locale") {
		c.Locale = portLocale
	}
	if f.Changed("bridge") {
		c.Bridge.Kind = portBridge
	}
	if f.Changed("wasm") {
		c.WASMPath = portWASM
	}
}

// openBridge resolves bridge secrets from the environment or the keychain.
func openBridge(ctx context.Context, c config.Config) (bridge.Bridge, error) {
	opts := bridge.Options{
		Kind:         c.Bridge.Kind,
		GRPCTarget:   c.Bridge.GRPCTarget,
		GRPCInsecure: c.Bridge.GRPCInsecure,
		RedisURL:     c.Bridge.RedisURL,
		RedisChannel: c.Bridge.RedisChannel,
		Token:        strings.TrimSpace(os.Getenv("FOOTPRINT_BRIDGE_TOKEN")),
		DonationDSN:  strings.TrimSpace(os.Getenv("FOOTPRINT_DONATION_DSN")),
	}
	needsToken := opts.Kind == "grpc" && opts.Token == ""
	needsDSN := opts.Kind == "postgres" && opts.DonationDSN == ""
	if needsToken || needsDSN {
		if km, err := keychain.GetManager(); err == nil {
			if needsToken {
				opts.Token, _ = km.LoadBridgeToken()
			}
			if needsDSN {
				opts.DonationDSN, _ = km.LoadDonationDSN()
			}
		} else {
			logging.With("port").Debugf("keychain unavailable: %v", err)
		}
	}
	if opts.Kind == "postgres" && opts.DonationDSN != "" {
		normalized, err := dsn.Normalize(opts.DonationDSN)
		if err != nil {
			return nil, err
		}
		opts.DonationDSN = normalized
	}
	return bridge.New(ctx, opts)
}

func newWorker(c config.Config) (processing.Worker, error) {
	if c.WASMPath == "" {
		return processing.NewScriptWorker(donation.Script()), nil
	}
	logging.With("port").WithField("module", c.WASMPath).Info("using WASI worker")
	return wasm.Load(c.WASMPath, wasm.DefaultConfig())
}

func newSurface(c config.Config, cancel context.CancelFunc) (visualisation.Surface, error) {
	if c.Surface != "web" {
		return console.NewStd(console.WithOnInputClosed(cancel)), nil
	}
	s := web.New()
	addr, err := s.Listen(c.Web.Addr)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ConfigInvalid, "listen on "+c.Web.Addr, err)
	}
	url := "http://" + addr + "/"
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Open ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(url))
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("  Press Ctrl+C to stop."))
	pterm.Println()
	if !portNoBrowser {
		openBrowser(url)
	}
	return s, nil
}

func printSummary(s assembly.Summary) {
	pterm.Println()
	items := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Pages shown: %d", s.Pages)},
	}
	if len(s.Donated) == 0 {
		items = append(items, pterm.BulletListItem{Level: 0, Text: "Nothing was donated"})
	} else {
		items = append(items, pterm.BulletListItem{Level: 0, Text: "Donated: " + strings.Join(s.Donated, ", ")})
	}
	for typ, reason := range s.Failed {
		items = append(items, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("%s failed: %s", typ, logging.Mask(reason))})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()

	switch {
	case !s.Exited:
		pterm.Info.Println("Session stopped before the flow finished")
	case s.ExitCode == 0:
		pterm.Success.Println("Session finished: " + s.ExitInfo)
	default:
		pterm.Warning.Printfln("Session ended with code %d: %s", s.ExitCode, s.ExitInfo)
	}
}

func init() {
	rootCmd.AddCommand(portCmd)
	portCmd.Flags().StringVar(&portSurface, "surface", "terminal", "Where to show pages: terminal or web")
	portCmd.Flags().StringVar(&portAddr, "addr", "127.0.0.1:8787", "Listen address for --surface web")
	portCmd.Flags().StringVar(&portLocale, "locale", "en", "Language of the pages, e.g. en or nl")
	portCmd.Flags().StringVar(&portBridge, "bridge", "fake", "Where donations go: fake, grpc, redis or postgres")
	portCmd.Flags().StringVar(&portWASM, "wasm", "", "Run this WASI module instead of the built-in script")
	portCmd.Flags().BoolVar(&portNoBrowser, "no-browser", false, "Do not open the browser for --surface web")
}
