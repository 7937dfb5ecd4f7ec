// Command gasoline-replay is the thin CLI wiring the core record/replay/diff
// packages together (spec.md 6.6). It is glue only: the real work lives in
// internal/interceptor, internal/scenario, internal/store, internal/player,
// and internal/comparer. Grounded on the teacher's own thin cmd/ convention
// and built with spf13/cobra, a direct dependency shared by sofatutor-llm-proxy
// and vvoland-cagent in the reference pack.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/apidiff"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/comparer"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/config"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/interceptor"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/player"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/scenario"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/store"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/streaming"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/util"
)

// driver is the registered ReplayDriver for the `replay` subcommand. No
// concrete implementation ships in this binary: driving a real headless
// browser through a scenario is explicitly out of scope (spec.md 1); this
// var is the seam a caller links a real driver into.
var driver player.ReplayDriver

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	util.SetLogger(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "gasoline-replay",
		Short: "Record, replay, and diff browser API/DOM/visual scenarios",
	}
	root.AddCommand(newRecordCmd(logger), newReplayCmd(logger), newDiffCmd(logger))
	return root
}

func newRecordCmd(logger *zap.Logger) *cobra.Command {
	var serveAddr string
	var live bool

	cmd := &cobra.Command{
		Use:   "record <scenario.json>",
		Short: "Exercise a scenario's assertApi steps and persist the captured calls as a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			if err := sc.AcceptVersion(); err != nil {
				return err
			}

			st, err := store.New(cfg.StorePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			var hub *streaming.Hub
			if live {
				hub = streaming.NewHub(streaming.DefaultConfig())
				srv := newDashboardServer(serveAddr, hub)
				util.SafeGo(func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("dashboard server stopped", zap.Error(err))
					}
				})
				defer srv.Close()
				logger.Info("live dashboard listening", zap.String("addr", serveAddr))
			}

			ic := interceptor.New(0)
			tapCfg := cfg.TapConfig()
			if hub != nil {
				tapCfg.OnResponse = hub.PublishAPICall
				tapCfg.OnError = hub.PublishAPICall
			}
			client := &http.Client{Timeout: 30 * time.Second}
			if err := ic.Start(wrapTransport(client, ic), nil, tapCfg); err != nil {
				return fmt.Errorf("starting interceptor: %w", err)
			}
			defer ic.Stop()

			executeAssertApiSteps(cmd.Context(), logger, client, sc)

			baseline := scenario.Baseline{
				ScenarioID: sc.ID,
				CapturedAt: time.Now().UTC().Format(time.RFC3339),
				ApiCalls:   dereferenceCalls(ic.GetCalls()),
			}
			if err := st.Save(baseline); err != nil {
				return fmt.Errorf("saving baseline: %w", err)
			}
			logger.Info("baseline recorded",
				zap.String("scenarioId", sc.ID),
				zap.Int("apiCalls", len(baseline.ApiCalls)))
			return nil
		},
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":8787", "address for the live dashboard WebSocket server")
	cmd.Flags().BoolVar(&live, "serve", false, "stream captured calls to a live dashboard while recording")
	return cmd
}

func newReplayCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <scenario.json>",
		Short: "Replay a scenario against a registered driver and print the run result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if driver == nil {
				return types.NewConfigError("no replay driver registered in this binary; link a concrete player.ReplayDriver implementation to enable replay")
			}
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			if err := sc.AcceptVersion(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			result, err := driver.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("replay run: %w", err)
			}
			logger.Info("replay finished",
				zap.String("scenarioId", sc.ID),
				zap.Int("passed", result.Summary.Passed),
				zap.Int("failed", result.Summary.Failed))
			return printJSON(result)
		},
	}
	return cmd
}

func newDiffCmd(logger *zap.Logger) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "diff <baselineScenarioId> <actualArtifacts.json>",
		Short: "Compare a stored baseline against a freshly captured set of artifacts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			st, err := store.New(cfg.StorePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			baseline, err := st.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading baseline %s: %w", args[0], err)
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading actual artifacts: %w", err)
			}
			var actual comparer.Artifacts
			if err := json.Unmarshal(data, &actual); err != nil {
				return fmt.Errorf("parsing actual artifacts: %w", err)
			}

			apiCfg := cfg.ApiDiffConfig()
			apiCfg.Strict = strict || apiCfg.Strict
			domCfg := cfg.DomDiffConfig()
			visualCfg := cfg.VisualDiffConfig()
			apiOpts := &apidiff.Options{Config: apiCfg}

			var baselineSnap *types.DomSnapshot
			var baselineShot *types.ScreenshotImage
			if len(baseline.Snapshots) > 0 {
				baselineSnap = &baseline.Snapshots[0].Snapshot
				baselineShot = baseline.Snapshots[0].Screenshot
			}
			if baselineShot == nil {
				baselineShot = baseline.FinalScreenshot
			}

			result := comparer.Compare(
				comparer.Artifacts{ApiCalls: baseline.ApiCalls, DomSnap: baselineSnap, Screenshot: baselineShot},
				actual,
				&comparer.Options{
					ApiConfig:    apiOpts,
					DomConfig:    &domCfg,
					VisualConfig: &visualCfg,
					ScenarioID:   baseline.ScenarioID,
					BaselineID:   args[0],
				},
			)

			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Passed {
				logger.Warn("comparison failed", zap.String("scenarioId", baseline.ScenarioID))
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "force strict API comparison regardless of config")
	return cmd
}

// newDashboardServer builds the HTTP server a record run optionally
// exposes: /ws for the live event feed, /healthz for liveness checks.
func newDashboardServer(addr string, hub *streaming.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r); err != nil {
			util.JSONResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		util.JSONResponse(w, http.StatusOK, map[string]any{"clients": hub.ClientCount()})
	})
	return &http.Server{Addr: addr, Handler: mux}
}

// wrapTransport returns the client's own transport (http.DefaultTransport
// if unset) so the interceptor's FetchTap can wrap it, then rebinds
// client.Transport to the tap itself so every request the client issues is
// captured transparently.
func wrapTransport(client *http.Client, ic *interceptor.Interceptor) http.RoundTripper {
	original := client.Transport
	if original == nil {
		original = http.DefaultTransport
	}
	client.Transport = ic.FetchRoundTripper()
	return original
}

// executeAssertApiSteps is the CLI's stand-in for a real browser: it has no
// page to drive, so it replays only the scenario's assertApi steps as
// direct HTTP calls, which is enough to populate a baseline's API-call
// artifacts. DOM/visual artifacts require a real player.ReplayDriver.
func executeAssertApiSteps(ctx context.Context, logger *zap.Logger, client *http.Client, sc scenario.Scenario) {
	for _, step := range sc.Steps {
		if step.Type != scenario.StepAssertApi || step.URLPattern == "" {
			continue
		}
		method := step.Method
		if method == "" {
			method = http.MethodGet
		}
		req, err := http.NewRequestWithContext(ctx, method, step.URLPattern, nil)
		if err != nil {
			logger.Warn("skipping malformed assertApi step", zap.String("url", step.URLPattern), zap.Error(err))
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			logger.Warn("assertApi request failed", zap.String("url", step.URLPattern), zap.Error(err))
			continue
		}
		resp.Body.Close()
	}
}

func loadScenario(path string) (scenario.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario.Scenario{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var sc scenario.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return scenario.Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return sc, nil
}

func dereferenceCalls(calls []*types.CapturedApiCall) []types.CapturedApiCall {
	out := make([]types.CapturedApiCall, len(calls))
	for i, c := range calls {
		out[i] = *c
	}
	return out
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
