package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turnforge/heroesai/lib/ai"
	"github.com/turnforge/heroesai/lib/pathfind"
)

var worldWidthSmall int

var kingdomTurnCmd = &cobra.Command{
	Use:   "kingdom-turn",
	Short: "Run the Adventure Planner once over a kingdom snapshot",
	RunE:  runKingdomTurn,
}

func init() {
	kingdomTurnCmd.Flags().IntVar(&worldWidthSmall, "world-width-small", 20, "world_width/small threshold for hero hiring (spec.md 4.4)")
	rootCmd.AddCommand(kingdomTurnCmd)
}

func runKingdomTurn(cmd *cobra.Command, args []string) error {
	path, err := getSnapshotPath()
	if err != nil {
		return err
	}
	k, err := loadKingdom(path)
	if err != nil {
		return err
	}

	pf := pathfind.New(k.World)
	planner := ai.NewAdventurePlanner(k, pf, nil)
	result := planner.RunKingdomTurn(false, worldWidthSmall, k.World.CountDay)

	if isJSONOutput() {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, c := range result.Commands {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s unit=%d reason=%q\n", commandKindLabel(c.Kind), c.UnitID, c.Reason)
	}
	if result.HireAtCastle != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "hire-at-castle=%d\n", result.HireAtCastle)
	}
	return nil
}

func commandKindLabel(k ai.CommandKind) string {
	switch k {
	case ai.CommandMove:
		return "move"
	case ai.CommandAttack:
		return "attack"
	case ai.CommandCast:
		return "cast"
	case ai.CommandRetreat:
		return "retreat"
	case ai.CommandSurrender:
		return "surrender"
	case ai.CommandAutoSwitch:
		return "auto-switch"
	default:
		return "skip"
	}
}
