// Package sqlstore keeps the household in a relational database through gorm
// and runs each sync in a transaction holding a row lock on the list.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantrysync/ingredient"
	"pantrysync/quantity"
	"pantrysync/reconcile"
	"pantrysync/storage"
)

// Store runs syncs and plan imports against the database.
type Store struct {
	db    *gorm.DB
	vocab ingredient.Vocabulary
	opts  []reconcile.Option
}

// Open connects to postgres.
func Open(dsn string, vocab ingredient.Vocabulary, opts ...reconcile.Option) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db, vocab, opts...), nil
}

func New(db *gorm.DB, vocab ingredient.Vocabulary, opts ...reconcile.Option) *Store {
	return &Store{db: db, vocab: vocab, opts: opts}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&ingredientRow{},
		&userRow{},
		&listRow{},
		&listLineRow{},
		&pantryLineRow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Import upserts a household snapshot. List and pantry lines of the imported
// lists and scopes are replaced. The snapshot is prepared in place first.
func (s *Store) Import(ctx context.Context, snap *storage.Snapshot) error {
	if err := snap.Prepare(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true}).Session(&gorm.Session{})

		for _, ing := range snap.Ingredients {
			row := ingredientToRow(ing, s.vocab)
			if err := upsert.Create(&row).Error; err != nil {
				return fmt.Errorf("import ingredient %q: %w", ing.Name, err)
			}
		}
		for _, u := range snap.Users {
			row := userRow{ID: u.ID, Name: u.Name, FamilyID: u.FamilyID}
			if err := upsert.Create(&row).Error; err != nil {
				return fmt.Errorf("import user %q: %w", u.ID, err)
			}
		}
		for _, l := range snap.Lists {
			row := listRow{ID: l.ID, Name: l.Name, OwnerID: l.OwnerID, FamilyID: l.FamilyID}
			if err := upsert.Create(&row).Error; err != nil {
				return fmt.Errorf("import list %q: %w", l.ID, err)
			}
			if err := tx.Where("list_id = ?", l.ID).Delete(&listLineRow{}).Error; err != nil {
				return err
			}
			if err := insertListLines(tx, l.ID, 0, l.Lines); err != nil {
				return err
			}
		}
		for _, p := range snap.Pantries {
			err := tx.Where("scope_kind = ? AND scope_id = ?", string(p.Scope.Kind), p.Scope.ID).
				Delete(&pantryLineRow{}).Error
			if err != nil {
				return err
			}
			for i, l := range p.Lines {
				row := pantryLineRow{
					ID:         l.ID,
					ScopeKind:  string(p.Scope.Kind),
					ScopeID:    p.Scope.ID,
					Position:   i,
					Quantities: columnsOf(l),
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("import pantry line %q: %w", l.ID, err)
				}
			}
		}
		return nil
	})
}

// SyncList reconciles one list against its pantry. The list row stays
// locked until the patches are written, so concurrent syncs of the same list
// run one after the other.
func (s *Store) SyncList(ctx context.Context, listID string) (reconcile.Outcome, error) {
	var out reconcile.Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := lockList(tx, listID)
		if err != nil {
			return err
		}

		var rows []listLineRow
		if err := tx.Where("list_id = ?", listID).Order("position").Find(&rows).Error; err != nil {
			return fmt.Errorf("load list lines: %w", err)
		}

		out, err = reconcile.NewEngine(household{db: tx, vocab: s.vocab}, s.opts...).Sync(ctx, list.list(), linesOf(rows))
		if err != nil {
			return err
		}
		return applyPatches(tx, rows, out.Patches)
	})
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if len(out.Patches) > 0 {
		slog.Info("STORAGE: Saved sync", "list_id", listID, "patches", len(out.Patches))
	}
	return out, nil
}

// PlanToList aggregates sources into new lines appended to a list.
func (s *Store) PlanToList(ctx context.Context, listID string, sources []reconcile.Source) (reconcile.Aggregate, []reconcile.Line, error) {
	var (
		agg   reconcile.Aggregate
		lines []reconcile.Line
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockList(tx, listID); err != nil {
			return err
		}

		var err error
		agg, err = reconcile.NewAggregator(household{db: tx, vocab: s.vocab}, s.vocab).Aggregate(ctx, sources)
		if err != nil {
			return err
		}
		lines = agg.Lines()

		var next struct{ N int }
		err = tx.Model(&listLineRow{}).
			Select("COALESCE(MAX(position) + 1, 0) AS n").
			Where("list_id = ?", listID).
			Scan(&next).Error
		if err != nil {
			return err
		}
		return insertListLines(tx, listID, next.N, lines)
	})
	if err != nil {
		return reconcile.Aggregate{}, nil, err
	}
	return agg, lines, nil
}

// Resolve maps a free-text name to a known ingredient.
func (s *Store) Resolve(ctx context.Context, name string) (ingredient.Match, bool, error) {
	return ingredient.NewResolver(household{db: s.db.WithContext(ctx), vocab: s.vocab}, s.vocab).Resolve(ctx, name)
}

// Lines returns the current lines of a list.
func (s *Store) Lines(ctx context.Context, listID string) ([]reconcile.Line, error) {
	var rows []listLineRow
	if err := s.db.WithContext(ctx).Where("list_id = ?", listID).Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}
	return linesOf(rows), nil
}

func lockList(tx *gorm.DB, listID string) (listRow, error) {
	var list listRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&list, "id = ?", listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return listRow{}, fmt.Errorf("list %q: %w", listID, reconcile.ErrListNotFound)
	}
	if err != nil {
		return listRow{}, fmt.Errorf("lock list %q: %w", listID, err)
	}
	return list, nil
}

func insertListLines(tx *gorm.DB, listID string, from int, lines []reconcile.Line) error {
	for i, l := range lines {
		row := listLineRow{ID: l.ID, ListID: listID, Position: from + i, Quantities: columnsOf(l)}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert list line %q: %w", l.ID, err)
		}
	}
	return nil
}

func applyPatches(tx *gorm.DB, rows []listLineRow, patches []reconcile.Patch) error {
	byID := make(map[string]listLineRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	for _, p := range patches {
		switch p.Op {
		case reconcile.PatchRemove:
			if err := tx.Delete(&listLineRow{}, "id = ?", p.LineID).Error; err != nil {
				return fmt.Errorf("remove line %q: %w", p.LineID, err)
			}
		case reconcile.PatchUpdate:
			row, ok := byID[p.LineID]
			if !ok {
				return fmt.Errorf("update line %q: not on list", p.LineID)
			}
			row.Quantities = columnsOf(p.Line)
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("update line %q: %w", p.LineID, err)
			}
		}
	}
	return nil
}

// household reads reconciliation inputs and ingredients through one handle,
// usually a transaction.
type household struct {
	db    *gorm.DB
	vocab ingredient.Vocabulary
}

func (h household) FamilyOf(_ context.Context, userID string) (string, bool, error) {
	var u userRow
	err := h.db.First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.FamilyID, u.FamilyID != "", nil
}

func (h household) PantryLines(_ context.Context, scope reconcile.Scope) ([]reconcile.Line, error) {
	var rows []pantryLineRow
	err := h.db.Where("scope_kind = ? AND scope_id = ?", string(scope.Kind), scope.ID).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]reconcile.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Quantities.line(r.ID))
	}
	return lines, nil
}

func (h household) Ingredients(_ context.Context, ids []string) (map[string]ingredient.Ingredient, error) {
	out := make(map[string]ingredient.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ingredientRow
	if err := h.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.ingredient()
	}
	return out, nil
}

func (h household) Get(_ context.Context, id string) (ingredient.Ingredient, bool, error) {
	return h.first("id = ?", id)
}

func (h household) FindByName(_ context.Context, name string) (ingredient.Ingredient, bool, error) {
	return h.first("name_key = ?", nameKey(name))
}

func (h household) first(query string, arg any) (ingredient.Ingredient, bool, error) {
	var row ingredientRow
	err := h.db.First(&row, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ingredient.Ingredient{}, false, nil
	}
	if err != nil {
		return ingredient.Ingredient{}, false, err
	}
	return row.ingredient(), true, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Candidates returns ingredients whose search key starts with prefix, the
// shorter names first.
func (h household) Candidates(_ context.Context, prefix string, limit int) ([]ingredient.Ingredient, error) {
	if prefix == "" || limit <= 0 {
		return nil, nil
	}
	var rows []ingredientRow
	err := h.db.Where(`search_key LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Order("LENGTH(name), name").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ingredient.Ingredient, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ingredient())
	}
	return out, nil
}

func (h household) Create(ctx context.Context, name string, kind quantity.Kind) (ingredient.Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return ingredient.Ingredient{}, fmt.Errorf("cannot create ingredient with empty name")
	}
	if ing, ok, err := h.FindByName(ctx, name); err != nil {
		return ingredient.Ingredient{}, err
	} else if ok {
		return ing, nil
	}

	ing := ingredient.New(name, kind)
	row := ingredientToRow(ing, h.vocab)
	if err := h.db.Create(&row).Error; err != nil {
		return ingredient.Ingredient{}, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	return ing, nil
}
