package console

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/cory-johannsen/arena/internal/balance"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

// Renderer writes human-readable battle and report output.
type Renderer struct {
	w   io.Writer
	pal Palette
}

// NewRenderer creates a Renderer writing to w, colored when color is true.
//
// Precondition: w must be non-nil.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, pal: Palette{Enabled: color}}
}

// Printf writes a plain formatted line.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// Stats prints a character's stat snapshot.
func (r *Renderer) Stats(c *character.Character) {
	fmt.Fprintf(r.w, "\n%s (%s) Stats:\n", r.pal.Colorize(Bold, c.Name), c.Class)
	fmt.Fprintf(r.w, "Health: %d\n", c.Health)
	fmt.Fprintf(r.w, "Attack: %d\n", c.Attack)
	fmt.Fprintf(r.w, "Defense: %d\n", c.Defense)
	fmt.Fprintf(r.w, "Range: %d\n", c.Range)
	fmt.Fprintf(r.w, "Dodge Chance: %.1f%%\n", c.DodgeChance*100)
	fmt.Fprintf(r.w, "Special: %s (cooldown %d)\n", c.Ability.Name, c.Ability.Cooldown)
}

// BattleStart prints the pre-combat stats of both combatants and the matchup header.
func (r *Renderer) BattleStart(a, b *character.Character) {
	fmt.Fprintln(r.w, "\n--- Pre-combat Stats ---")
	r.Stats(a)
	r.Stats(b)
	fmt.Fprintln(r.w, r.pal.Colorf(BrightYellow, "\n--- %s (%s) vs %s (%s) ---", a.Name, a.Class, b.Name, b.Class))
}

// Event prints one narration event.
func (r *Renderer) Event(e combat.Event) {
	switch e.Kind {
	case combat.EventTurn:
		fmt.Fprintf(r.w, "\nRound %d\n", e.Round)
		fmt.Fprintf(r.w, "Distance between combatants: %d\n", e.Distance)
		if e.Moved > 0 {
			fmt.Fprintf(r.w, "%s moves %d units closer.\n", e.Actor, e.Moved)
		}
		if e.Ability == nil && e.Attack == combat.ResultHit {
			fmt.Fprintf(r.w, "%s deals %s damage to %s\n", e.Actor, r.pal.Colorf(Red, "%d", e.Damage), e.Target)
		} else {
			fmt.Fprintln(r.w, e.Narrative)
		}
		r.health(e)
	case combat.EventRevive:
		fmt.Fprintln(r.w, r.pal.Colorize(BrightRed, e.Narrative))
		r.health(e)
	case combat.EventVictory:
		fmt.Fprintln(r.w, r.pal.Colorize(BrightGreen, e.Narrative))
	case combat.EventDraw:
		fmt.Fprintln(r.w, r.pal.Colorize(Yellow, e.Narrative))
	}
}

func (r *Renderer) health(e combat.Event) {
	fmt.Fprintf(r.w, "%s: %s HP | %s: %s HP\n",
		e.FirstName, r.pal.Colorf(Green, "%d", e.FirstHP),
		e.SecondName, r.pal.Colorf(Green, "%d", e.SecondHP))
}

// Outcome prints a one-line battle summary.
func (r *Renderer) Outcome(o combat.Outcome) {
	if o.Draw {
		fmt.Fprintf(r.w, "Draw after %d rounds (%d special ability uses)\n", o.Rounds, o.AbilityUses)
		return
	}
	fmt.Fprintf(r.w, "%s (%s) beat %s (%s) in %d rounds with %d HP left (%d special ability uses)\n",
		o.WinnerName, o.Winner, o.LoserName, o.Loser, o.Rounds, o.WinnerHealth, o.AbilityUses)
}

// TournamentWinner announces the overall winner.
func (r *Renderer) TournamentWinner(c *character.Character) {
	fmt.Fprintln(r.w, r.pal.Colorf(BrightYellow, "\nThe overall winner is %s (%s) with %d wins!", c.Name, c.Class, c.Wins))
}

// Progress prints a balance test progress line.
func (r *Renderer) Progress(p balance.Progress) {
	fmt.Fprintf(r.w, "Progress: %d/%d battles completed\n", p.Completed, p.Planned)
	fmt.Fprintf(r.w, "Estimated time remaining: %.2f seconds\n", p.Remaining.Seconds())
}

// RunSummary prints the completion line of a balance report, warning when it
// stopped early.
func (r *Renderer) RunSummary(rep *balance.Report) {
	if rep.Partial {
		fmt.Fprintln(r.w, r.pal.Colorf(Yellow, "Warning: balance test stopped early (%s)", rep.StopReason))
		fmt.Fprintf(r.w, "Completed %d out of %d planned battles\n", rep.Completed, rep.Planned)
	}
	fmt.Fprintf(r.w, "Total time taken: %.2f seconds\n", rep.Elapsed.Round(time.Millisecond).Seconds())
	fmt.Fprintf(r.w, "Run %s (seed %d)\n", rep.ID, rep.Seed)
}

// BalanceResults prints the per-matchup rates grouped by the first class.
func (r *Renderer) BalanceResults(rep *balance.Report) {
	fmt.Fprintln(r.w, r.pal.Colorize(Bold, "\n--- Balance Test Results ---"))
	classes := rep.Classes()
	for _, a := range classes {
		fmt.Fprintf(r.w, "\n%s Results:\n", a)
		for _, b := range classes {
			if a == b {
				continue
			}
			s, ok := rep.Lookup(a, b)
			if !ok {
				continue
			}
			fmt.Fprintf(r.w, "  vs %s:\n", b)
			fmt.Fprintf(r.w, "    Win Rate: %.2f%%\n", s.WinRate())
			fmt.Fprintf(r.w, "    Avg. Rounds: %.2f\n", s.AvgRounds())
			fmt.Fprintf(r.w, "    Avg. Winner Health: %.2f\n", s.AvgWinnerHealth())
			fmt.Fprintf(r.w, "    Special Ability Use: %.2f%%\n", s.AbilityUseRate())
			fmt.Fprintf(r.w, "    First Attacker Win Rate: %.2f%%\n", s.FirstAttackerWinRate())
		}
	}
}

// WinMatrix prints a bordered class by class grid of wins for the row class
// acting first against the column class, with the win rate over completed trials.
func (r *Renderer) WinMatrix(rep *balance.Report) {
	classes := rep.Classes()
	fmt.Fprintln(r.w, r.pal.Colorize(Bold, "\n--- Win Summary Table ---"))

	header := []string{"Class"}
	for _, c := range classes {
		header = append(header, c.String())
	}
	tbl := r.grid(header)
	for _, a := range classes {
		row := []string{a.String()}
		for _, b := range classes {
			row = append(row, matrixCell(rep, a, b))
		}
		tbl.Append(row)
	}
	tbl.Render()
}

// RecentRuns prints stored balance runs newest first.
func (r *Renderer) RecentRuns(runs []postgres.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(r.w, "No stored balance runs.")
		return
	}
	tbl := r.grid([]string{"Run", "Started", "Seed", "Trials", "Completed", "Partial"})
	for _, run := range runs {
		tbl.Append([]string{
			run.ID.String(),
			run.StartedAt.Format(time.RFC3339),
			strconv.FormatInt(run.Seed, 10),
			strconv.Itoa(run.TrialsPerMatchup),
			fmt.Sprintf("%d/%d", run.Completed, run.Planned),
			strconv.FormatBool(run.Partial),
		})
	}
	tbl.Render()
}

// grid returns a table writer that draws every cell border, headers as given.
func (r *Renderer) grid(header []string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(r.w)
	tbl.SetHeader(header)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)
	tbl.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tbl.SetRowLine(true)
	return tbl
}

func matrixCell(rep *balance.Report, a, b ruleset.Class) string {
	if a == b {
		return "-"
	}
	s, ok := rep.Lookup(a, b)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d (%.2f%%)", s.Wins, s.WinRate())
}
