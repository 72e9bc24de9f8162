package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turnforge/heroesai/lib/ai"
)

var unitTurnCmd = &cobra.Command{
	Use:   "unit-turn",
	Short: "Run the Battle Planner once for one unit in a battle snapshot",
	RunE:  runUnitTurn,
}

func init() {
	rootCmd.AddCommand(unitTurnCmd)
}

func runUnitTurn(cmd *cobra.Command, args []string) error {
	path, err := getSnapshotPath()
	if err != nil {
		return err
	}
	arena, actingUID, err := loadBattle(path)
	if err != nil {
		return err
	}

	acting := findUnitByUID(arena, actingUID)
	if acting == nil {
		return fmt.Errorf("no unit with uid %d in snapshot", actingUID)
	}

	planner := ai.NewBattlePlanner(arena, defaultSpellTable(), nil)
	commands := planner.UnitTurn(acting, nil)

	if isJSONOutput() {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(commands)
	}
	for _, c := range commands {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s unit=%d target=%d cell=%d reason=%q\n",
			commandKindLabel(c.Kind), c.UnitID, c.TargetUID, c.TargetCell, c.Reason)
	}
	return nil
}
