package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var simulateRule string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the configured guardrail rules",
	Long: `Prints the guardrail rules in their evaluation order. With --simulate,
runs a single named rule against a plan built from the intent flags and
prints its outcome without aggregation.`,
	Example: `  deskpilot rules
  deskpilot rules --simulate content-security --intent type_text --slot "text=password: hunter2"`,
	RunE: runRulesCmd,
}

func runRulesCmd(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.bus.Close()

	if simulateRule == "" {
		out, err := json.MarshalIndent(p.engine.RulesInfo(), "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	in, err := parseIntent()
	if err != nil {
		return fmt.Errorf("--simulate needs an intent to build a plan from: %w", err)
	}

	report, err := p.manager.CreatePlan(cmd.Context(), in, nil, true)
	if err != nil {
		return err
	}

	outcome, err := p.engine.SimulateCheck(cmd.Context(), simulateRule, report.Plan, nil)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func init() {
	rulesCmd.Flags().StringVar(&simulateRule, "simulate", "", "Run a single rule by name against the intent flags")
	rulesCmd.Flags().StringVar(&planIntentType, "intent", "", "Intent type for --simulate")
	rulesCmd.Flags().StringArrayVar(&planSlots, "slot", nil, "Intent slot as key=value (repeatable)")
}
