package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/deskpilot-ai/deskpilot/internal/skill"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration, rules, and skills",
	RunE:  runStatusCmd,
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.bus.Close()

	catalog, _ := p.skills.(*skill.Catalog)

	status := map[string]any{
		"config": cfg,
		"rules":  p.engine.RulesInfo(),
	}
	if catalog != nil {
		status["skills"] = catalog.Names()
	}

	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
