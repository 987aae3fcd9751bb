package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cognitia-edu/minerva/pkg/config"
	"cognitia-edu/minerva/pkg/gateway"
	"cognitia-edu/minerva/pkg/strategy"
	"cognitia-edu/minerva/pkg/telemetry/logging"
)

var askFlags struct {
	session       string
	learner       string
	activity      string
	institution   string
	mode          string
	role          string
	justification string
	timeout       time.Duration
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Process a single prompt through the gateway",
	Long: `Process one learner prompt through the full pipeline and print the
response. Useful for smoke-testing a configuration and for policy tuning.

Examples:
  minerva ask --session demo --learner l1 --activity a1 "What is a goroutine?"

  minerva ask --mode simulator --role "code reviewer" "Here is my PR: ..."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askFlags.session, "session", "cli", "session identifier")
	askCmd.Flags().StringVar(&askFlags.learner, "learner", "cli-learner", "learner identifier")
	askCmd.Flags().StringVar(&askFlags.activity, "activity", "", "activity identifier")
	askCmd.Flags().StringVar(&askFlags.institution, "institution", "", "institution identifier")
	askCmd.Flags().StringVar(&askFlags.mode, "mode", "tutor", "interaction mode: tutor, simulator, evaluator")
	askCmd.Flags().StringVar(&askFlags.role, "role", "", "professional role (simulator mode)")
	askCmd.Flags().StringVar(&askFlags.justification, "justification", "", "learner-stated reasoning")
	askCmd.Flags().DurationVar(&askFlags.timeout, "timeout", 60*time.Second, "overall processing timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	} else if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "warn"
	}

	logger, err := logging.New(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), askFlags.timeout)
	defer cancel()

	res, err := rt.gateway.ProcessInteraction(ctx, &gateway.Interaction{
		SessionID:     askFlags.session,
		LearnerID:     askFlags.learner,
		ActivityID:    askFlags.activity,
		InstitutionID: askFlags.institution,
		Mode:          strategy.Mode(askFlags.mode),
		Prompt:        strings.Join(args, " "),
		Justification: askFlags.justification,
		Role:          askFlags.role,
	})
	if err != nil {
		return err
	}

	if res.Blocked {
		fmt.Printf("[blocked: %s]\n%s\n", res.Reason, res.Message)
		return nil
	}

	fmt.Println(res.Message)
	if verbose {
		fmt.Printf("\n[agent=%s state=%s involvement=%.2f cached=%v]\n",
			res.AgentUsed, res.CognitiveState, res.AIInvolvement, res.Cached)
	}
	return nil
}
