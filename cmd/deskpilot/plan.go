package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deskpilot-ai/deskpilot/internal/intent"
	"github.com/deskpilot-ai/deskpilot/internal/session"
)

var (
	planIntentType string
	planSlots      []string
	planConfidence float64
	planNoOptimize bool
	planExecute    bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run the planning pipeline for an intent",
	Long: `Builds a plan for the given intent, validates it, runs the guardrail
rules, and prints the full planning report as JSON. With --execute, an
approved plan that needs no confirmation is run immediately.`,
	Example: `  deskpilot plan --intent open_app --slot app_name=Notepad
  deskpilot plan --intent write_text_file --slot content=hello --slot path=~/Documents/note.txt
  deskpilot plan --intent web_search --slot query="golang slices" --execute`,
	RunE: runPlanCmd,
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	in, err := parseIntent()
	if err != nil {
		return err
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.bus.Close()

	if err := p.manager.ValidateIntent(in); err != nil {
		return err
	}

	report, err := p.manager.CreatePlan(cmd.Context(), in, nil, !planNoOptimize)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if !planExecute {
		return nil
	}
	if !report.Decision.Approved {
		return fmt.Errorf("plan was not approved: %s",
			strings.Join(report.Decision.BlockingReasons, "; "))
	}
	if report.Decision.RequiresConfirmation {
		return fmt.Errorf("plan requires confirmation before it can be executed")
	}

	s := session.New(report.Plan)
	if err := p.runner.Run(cmd.Context(), s); err != nil {
		return err
	}

	result, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(result))
	return nil
}

// parseIntent builds an intent from the command flags. Slots are given as
// key=value pairs.
func parseIntent() (*intent.Intent, error) {
	if planIntentType == "" {
		return nil, fmt.Errorf("--intent is required")
	}

	slots := make(map[string]any, len(planSlots))
	for _, pair := range planSlots {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid slot %q, expected key=value", pair)
		}
		slots[key] = value
	}

	return &intent.Intent{
		Type:       intent.Type(planIntentType),
		Confidence: planConfidence,
		Slots:      slots,
	}, nil
}

func init() {
	planCmd.Flags().StringVar(&planIntentType, "intent", "", "Intent type (open_app, focus_app, click_text, type_text, save_file, web_search, write_text_file)")
	planCmd.Flags().StringArrayVar(&planSlots, "slot", nil, "Intent slot as key=value (repeatable)")
	planCmd.Flags().Float64Var(&planConfidence, "confidence", 1.0, "Intent confidence in [0,1]")
	planCmd.Flags().BoolVar(&planNoOptimize, "no-optimize", false, "Skip the plan optimization pass")
	planCmd.Flags().BoolVar(&planExecute, "execute", false, "Execute the plan if approved and no confirmation is needed")
}
