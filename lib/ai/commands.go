// Package ai implements the two decision procedures the rest of this module
// exists to support: the Adventure Planner (C4, kingdom_turn) and the
// Battle Planner (C7, unit_turn), plus the services they consume — the
// Object Valuator (C3), Position Valuator (C5) and Spell Valuator (C6).
// Grounded on turnforge-weewar/lib/ai's BasicAIAdvisor/DecisionStrategy
// split, generalised from weewar's single best-move suggestion into the
// fheroes2 AI's ordered command stream.
package ai

import (
	"github.com/google/uuid"
	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
	"github.com/turnforge/heroesai/lib/spell"
)

// CommandKind enumerates the primary commands a planner can emit
// (spec.md 4.7 "Commands emitted by a turn").
type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandAttack
	CommandCast
	CommandRetreat
	CommandSurrender
	CommandAutoSwitch
	CommandSkip
	CommandDimensionDoor
)

// Command is one instruction the game engine must execute. Fields not used
// by a given Kind are left zero. Every command carries an ID so a host can
// correlate it with structured logs across the turn (SPEC_FULL.md
// [DOMAIN STACK]).
type Command struct {
	ID CommandID

	Kind CommandKind

	// Move / Attack (battle board)
	UnitID     int
	TargetCell battle.Cell // move-to cell for Move and for the pre-attack step of Attack
	TargetUID  int         // Attack: the enemy unit being struck
	Direction  battle.Direction

	// Move / DimensionDoor (adventure map)
	TargetTile lib.TileIndex

	// Cast
	Spell      spell.ID
	SpellCell  battle.Cell

	// AutoSwitch
	Color lib.Color

	Reason string
}

// CommandID is a correlation id stamped on every emitted command
// (SPEC_FULL.md [DOMAIN STACK], grounded on google/uuid usage across the
// retrieval pack's networked services).
type CommandID string

func newCommandID() CommandID { return CommandID(uuid.NewString()) }

func skip(unitID int, reason string) Command {
	return Command{ID: newCommandID(), Kind: CommandSkip, UnitID: unitID, Reason: reason}
}

func move(unitID int, to battle.Cell) Command {
	return Command{ID: newCommandID(), Kind: CommandMove, UnitID: unitID, TargetCell: to}
}

// moveToTile is move's adventure-map counterpart: the hero-turn phase steps
// a hero across world tiles, not battle-board cells.
func moveToTile(heroID int, to lib.TileIndex) Command {
	return Command{ID: newCommandID(), Kind: CommandMove, UnitID: heroID, TargetTile: to}
}

// dimensionDoor is the adventure-map teleport jump spec.md 4.4's hero-turn
// phase dispatches in place of moveToTile when Dimension-Door wins out.
func dimensionDoor(heroID int, to lib.TileIndex) Command {
	return Command{ID: newCommandID(), Kind: CommandDimensionDoor, UnitID: heroID, TargetTile: to}
}

func attack(unitID, targetUID int, moveTo battle.Cell, targetCell battle.Cell, dir battle.Direction) Command {
	return Command{
		ID: newCommandID(), Kind: CommandAttack, UnitID: unitID, TargetUID: targetUID,
		TargetCell: moveTo, SpellCell: targetCell, Direction: dir,
	}
}

func cast(unitID int, s spell.ID, cell battle.Cell) Command {
	return Command{ID: newCommandID(), Kind: CommandCast, UnitID: unitID, Spell: s, SpellCell: cell}
}

func retreat(unitID int, reason string) Command {
	return Command{ID: newCommandID(), Kind: CommandRetreat, UnitID: unitID, Reason: reason}
}

func surrender(unitID int, reason string) Command {
	return Command{ID: newCommandID(), Kind: CommandSurrender, UnitID: unitID, Reason: reason}
}

func autoSwitch(color lib.Color, reason string) Command {
	return Command{ID: newCommandID(), Kind: CommandAutoSwitch, Color: color, Reason: reason}
}
