package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pantrysync"
	"pantrysync/ingredient"
	"pantrysync/quantity"
)

// Household is the persistence boundary the engine reads from.
type Household interface {
	FamilyDirectory
	PantryLines(ctx context.Context, scope Scope) ([]Line, error)
	Ingredients(ctx context.Context, ids []string) (map[string]ingredient.Ingredient, error)
}

// Syncer reconciles a list against its pantry.
type Syncer interface {
	Sync(ctx context.Context, list List, lines []Line) (Outcome, error)
}

type Action string

const (
	ActionRemoved   Action = "removed"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionUnknown   Action = "unknown"
	ActionMismatch  Action = "mismatch"
)

// Decision is what the engine did with one list line.
type Decision struct {
	LineID       string `json:"line_id"`
	IngredientID string `json:"ingredient_id"`
	Action       Action `json:"action"`
	Upgraded     bool   `json:"upgraded,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

type PatchOp string

const (
	PatchRemove PatchOp = "remove"
	PatchUpdate PatchOp = "update"
)

// Patch is a change to a stored list line. Callers apply all patches of an
// outcome in the same transaction.
type Patch struct {
	Op     PatchOp `json:"op"`
	LineID string  `json:"line_id"`
	Line   Line    `json:"line"`
}

// Result is what a sync reports back to the caller.
type Result struct {
	LinesRemoved int    `json:"lines_removed"`
	LinesUpdated int    `json:"lines_updated"`
	Remainder    []Line `json:"remainder"`
}

// Outcome is a Result plus the patches that produce it and per-line decisions.
type Outcome struct {
	Scope     Scope      `json:"scope"`
	Result    Result     `json:"result"`
	Patches   []Patch    `json:"patches,omitempty"`
	Decisions []Decision `json:"decisions,omitempty"`
}

// Summary condenses the outcome for notifications.
func (o Outcome) Summary(listID string) pantrysync.SyncSummary {
	return pantrysync.SyncSummary{
		ListID:    listID,
		Removed:   o.Result.LinesRemoved,
		Updated:   o.Result.LinesUpdated,
		Remaining: len(o.Result.Remainder),
	}
}

// Engine runs syncs against a household.
type Engine struct {
	household Household
	logger    pantrysync.SyncLogger
	tel       *instruments
}

type Option func(*Engine)

// WithLogger sets the per-run sync logger.
func WithLogger(l pantrysync.SyncLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine reading from household.
func NewEngine(household Household, opts ...Option) *Engine {
	e := &Engine{household: household, logger: pantrysync.NewNoOpSyncLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync resolves the list's pantry scope, collects pantry totals once and
// evaluates every line. Errors come only from the household; the
// reconciliation itself always completes.
func (e *Engine) Sync(ctx context.Context, list List, lines []Line) (Outcome, error) {
	start := time.Now()
	ctx, span := e.tel.start(ctx, list, len(lines))
	defer span.End()

	out, err := e.sync(ctx, list, lines)
	elapsed := time.Since(start)
	e.tel.record(ctx, span, out, elapsed, err)
	e.logRun(list, out, elapsed, err)
	if err != nil {
		slog.Error("SYNC: Failed", "list_id", list.ID, "error", err)
		return Outcome{}, err
	}

	slog.Info("SYNC: Completed",
		"list_id", list.ID,
		"scope", out.Scope.String(),
		"lines", len(lines),
		"removed", out.Result.LinesRemoved,
		"updated", out.Result.LinesUpdated,
		"remaining", len(out.Result.Remainder),
	)
	return out, nil
}

func (e *Engine) sync(ctx context.Context, list List, lines []Line) (Outcome, error) {
	scope, err := ResolveScope(ctx, e.household, list)
	if err != nil {
		return Outcome{}, err
	}

	pantry, err := e.household.PantryLines(ctx, scope)
	if err != nil {
		return Outcome{}, fmt.Errorf("load pantry %s: %w", scope, err)
	}

	ids := ingredientIDs(lines, pantry)
	ingredients, err := e.household.Ingredients(ctx, ids)
	if err != nil {
		return Outcome{}, fmt.Errorf("load ingredients: %w", err)
	}

	out := Reconcile(lines, PantryTotals(pantry, ingredients), ingredients)
	out.Scope = scope
	return out, nil
}

func (e *Engine) logRun(list List, out Outcome, elapsed time.Duration, err error) {
	run := pantrysync.SyncLog{
		ListID:       list.ID,
		Scope:        out.Scope.String(),
		Timestamp:    time.Now(),
		Duration:     elapsed,
		LinesRemoved: out.Result.LinesRemoved,
		LinesUpdated: out.Result.LinesUpdated,
		Remaining:    len(out.Result.Remainder),
	}
	for _, d := range out.Decisions {
		run.Decisions = append(run.Decisions, pantrysync.DecisionLog{
			LineID:       d.LineID,
			IngredientID: d.IngredientID,
			Action:       string(d.Action),
			Upgraded:     d.Upgraded,
			Detail:       d.Detail,
		})
	}
	if err != nil {
		run.Error = err.Error()
	}
	if lerr := e.logger.LogSync(run); lerr != nil {
		slog.Error("Failed to log sync run", "error", lerr, "list_id", list.ID)
	}
}

func ingredientIDs(groups ...[]Line) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, lines := range groups {
		for _, l := range lines {
			if l.IngredientID != "" && !seen[l.IngredientID] {
				seen[l.IngredientID] = true
				ids = append(ids, l.IngredientID)
			}
		}
	}
	return ids
}

// Reconcile evaluates list lines in order against pantry totals. Pantry stock
// of an ingredient is shared by its lines and handed out in list order.
// Stock credited to lines that end up covered and removed is carried onto the
// first line of the same ingredient still standing, so a later sync against
// the same pantry finds nothing new to deduct.
//
// A line whose need cannot be determined, or whose unit cannot be reconciled
// with the pantry's, is kept unchanged.
func Reconcile(lines []Line, pantry map[string]Availability, ingredients map[string]ingredient.Ingredient) Outcome {
	r := &reconciler{pantry: pantry, ingredients: ingredients}

	claims := make([]*claim, 0, len(lines))
	pools := make(map[poolKey][]*claim)
	for _, l := range lines {
		c := r.evaluate(l)
		claims = append(claims, c)
		if c.action == "" {
			k := poolKey{ingredientID: l.IngredientID, unit: quantity.CanonicalToken(c.unit), canonical: c.canonical}
			pools[k] = append(pools[k], c)
		}
	}
	for _, group := range pools {
		allocate(group)
	}

	out := Outcome{Result: Result{Remainder: make([]Line, 0, len(lines))}}
	for _, c := range claims {
		if c.action != "" {
			c.keep(c.action, c.detail, false, &out)
			continue
		}
		c.settle(&out)
	}
	return out
}

type reconciler struct {
	pantry      map[string]Availability
	ingredients map[string]ingredient.Ingredient
}

type poolKey struct {
	ingredientID string
	unit         string
	canonical    bool
}

// claim is one list line on its way through a sync. Lines kept without
// looking at the pantry carry an action; the others draw on a pantry pool.
type claim struct {
	cur, orig Line
	d         Decision
	ing       ingredient.Ingredient
	hasIng    bool
	display   quantity.Amount

	action Action
	detail string

	need      decimal.Decimal
	unit      string
	canonical bool
	absent    bool
	stock     decimal.Decimal
	applied   decimal.Decimal
	credit    decimal.Decimal
	carried   decimal.Decimal
}

func (r *reconciler) evaluate(line Line) *claim {
	c := &claim{cur: line, orig: line, d: Decision{LineID: line.ID, IngredientID: line.IngredientID}}
	c.ing, c.hasIng = r.ingredients[line.IngredientID]
	ing := c.ing

	need, hasNeed := c.cur.Canonical()
	if hasNeed && c.hasIng && !quantity.SameUnit(need.Unit, ing.CanonicalUnit) {
		// canonical unit went stale, e.g. the ingredient was re-based
		if n, ok := quantity.Normalize(ing.Profile(), need.Quantity, need.Unit); ok {
			c.cur.setCanonical(n)
			need, c.d.Upgraded = n, true
		} else {
			return c.kept(ActionMismatch, fmt.Sprintf("stored unit %q does not convert to %q", need.Unit, ing.CanonicalUnit))
		}
	}

	display, hasDisplay := c.cur.Display()
	if !hasNeed {
		if !hasDisplay && c.cur.Note != "" {
			if a, ok := quantity.ParseAmount(c.cur.Note); ok {
				c.cur.setDisplay(a)
				display, hasDisplay, c.d.Upgraded = a, true, true
			}
		}
		if hasDisplay && c.hasIng {
			if n, ok := quantity.Normalize(ing.Profile(), display.Quantity, display.Unit); ok {
				c.cur.setCanonical(n)
				need, hasNeed, c.d.Upgraded = n, true, true
			}
		}
	}
	c.display = display

	if !hasNeed && !hasDisplay {
		if line.Empty() {
			return c.kept(ActionUnknown, "line has no amount and no note")
		}
		return c.kept(ActionUnknown, "no usable quantity")
	}

	pool, inPantry := r.pantry[line.IngredientID]
	if inPantry && !pool.HasCanonical && !pool.HasDisplay {
		inPantry = false
	}
	switch {
	case !inPantry:
		c.need, c.unit, c.canonical, c.absent = display.Quantity, display.Unit, hasNeed, true
		if hasNeed {
			c.need, c.unit = need.Quantity, need.Unit
		}

	case hasNeed && pool.HasCanonical && quantity.SameUnit(pool.Canonical.Unit, need.Unit):
		c.need, c.unit, c.canonical, c.stock = need.Quantity, need.Unit, true, pool.Canonical.Quantity

	case hasDisplay && pool.HasDisplay && quantity.SameUnit(pool.Display.Unit, display.Unit):
		c.need, c.unit, c.stock = display.Quantity, display.Unit, pool.Display.Quantity

	default:
		needUnit := display.Unit
		if hasNeed {
			needUnit = need.Unit
		}
		pantryUnit := pool.Display.Unit
		if pool.HasCanonical {
			pantryUnit = pool.Canonical.Unit
		}
		slog.Warn("SYNC: Unit mismatch, keeping line",
			"line_id", line.ID,
			"ingredient_id", line.IngredientID,
			"need_unit", needUnit,
			"pantry_unit", pantryUnit,
		)
		return c.kept(ActionMismatch, fmt.Sprintf("need %s, pantry has %s", needUnit, pantryUnit))
	}
	c.applied = c.cur.Applied(c.unit)
	return c
}

func (c *claim) kept(action Action, detail string) *claim {
	c.action, c.detail = action, detail
	return c
}

// total is the line's need before any pantry stock was deducted from it.
func (c *claim) total() decimal.Decimal { return c.need.Add(c.applied) }

func (c *claim) covered() bool { return !c.total().Sub(c.credit).IsPositive() }

// allocate hands out the stock of one pantry pool to its lines in list order.
// Each line only tracks its own credit, so whatever covered lines took moves
// to the first line left standing.
func allocate(claims []*claim) {
	left := claims[0].stock
	if left.IsNegative() {
		left = decimal.Zero
	}

	var heir *claim
	moved := decimal.Zero
	for _, c := range claims {
		c.credit = decimal.Min(left, c.total())
		left = left.Sub(c.credit)
		if c.covered() {
			moved = moved.Add(c.credit)
			continue
		}
		if heir == nil {
			heir = c
		}
	}
	if heir != nil {
		heir.carried = moved
	}
}

// settle applies the claim's credit. Only changes in availability since the
// last sync move a line; if stock shrank below what was credited, the need
// grows back.
func (c *claim) settle(out *Outcome) {
	remaining := c.total().Sub(c.credit)
	applied := c.credit.Add(c.carried)

	switch {
	case !remaining.IsPositive():
		c.d.Action = ActionRemoved
		c.d.Detail = fmt.Sprintf("covered: need %s %s", c.total().String(), c.unit)
		out.Result.LinesRemoved++
		out.Patches = append(out.Patches, Patch{Op: PatchRemove, LineID: c.orig.ID})
		out.Decisions = append(out.Decisions, c.d)

	case c.credit.Equal(c.applied):
		detail := "nothing new in pantry"
		if c.absent {
			detail = "not in pantry"
		}
		moved := !applied.Equal(c.applied)
		if moved {
			c.cur.setApplied(applied, c.unit)
			detail = fmt.Sprintf("%s %s credited from covered lines", c.carried.String(), c.unit)
		}
		c.keep(ActionUnchanged, detail, moved, out)

	default:
		left := quantity.Amount{Quantity: remaining, Unit: c.unit}
		if c.canonical {
			c.cur.setCanonical(left)
			if c.hasIng {
				c.cur.setDisplay(quantity.Express(c.ing.Profile(), left, c.display.Unit))
			} else {
				c.cur.setDisplay(quantity.Friendly(left))
			}
		} else {
			c.cur.setDisplay(left)
		}
		c.cur.setApplied(applied, c.unit)

		c.d.Action = ActionUpdated
		c.d.Detail = fmt.Sprintf("%s %s still needed", remaining.String(), c.unit)
		out.Result.LinesUpdated++
		out.Result.Remainder = append(out.Result.Remainder, c.named())
		out.Patches = append(out.Patches, Patch{Op: PatchUpdate, LineID: c.orig.ID, Line: c.cur})
		out.Decisions = append(out.Decisions, c.d)
	}
}

// keep leaves the line's need as it is. Lazily parsed fields and moved
// credit are still written back.
func (c *claim) keep(action Action, detail string, dirty bool, out *Outcome) {
	c.d.Action = action
	c.d.Detail = detail
	out.Result.Remainder = append(out.Result.Remainder, c.named())
	if c.d.Upgraded || dirty {
		out.Patches = append(out.Patches, Patch{Op: PatchUpdate, LineID: c.orig.ID, Line: c.cur})
	}
	out.Decisions = append(out.Decisions, c.d)
}

// named is the line as reported in the remainder, with the ingredient's name
// filled in when the stored line has none.
func (c *claim) named() Line {
	l := c.cur
	if l.IngredientName == "" && c.hasIng {
		l.IngredientName = c.ing.Name
	}
	return l
}
