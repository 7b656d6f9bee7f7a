package sqlstore

import (
	"strings"

	"github.com/shopspring/decimal"

	"pantrysync/ingredient"
	"pantrysync/quantity"
	"pantrysync/reconcile"
)

type ingredientRow struct {
	ID                string              `gorm:"primaryKey;size:36"`
	Name              string              `gorm:"not null"`
	NameKey           string              `gorm:"not null;uniqueIndex"`
	SearchKey         string              `gorm:"index"`
	CanonicalUnit     string              `gorm:"not null"`
	CanonicalUnitType string              `gorm:"not null"`
	DensityGPerML     decimal.NullDecimal `gorm:"type:numeric"`
	AvgWeightPerUnitG decimal.NullDecimal `gorm:"type:numeric"`
}

func (ingredientRow) TableName() string { return "ingredients" }

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func ingredientToRow(ing ingredient.Ingredient, vocab ingredient.Vocabulary) ingredientRow {
	return ingredientRow{
		ID:                ing.ID,
		Name:              ing.Name,
		NameKey:           nameKey(ing.Name),
		SearchKey:         vocab.SearchKey(ing.Name),
		CanonicalUnit:     ing.CanonicalUnit,
		CanonicalUnitType: ing.CanonicalUnitType.String(),
		DensityGPerML:     ing.DensityGPerML,
		AvgWeightPerUnitG: ing.AvgWeightPerUnitG,
	}
}

func (r ingredientRow) ingredient() ingredient.Ingredient {
	kind, _ := quantity.ParseKind(r.CanonicalUnitType)
	return ingredient.Ingredient{
		ID:                r.ID,
		Name:              r.Name,
		CanonicalUnit:     r.CanonicalUnit,
		CanonicalUnitType: kind,
		DensityGPerML:     r.DensityGPerML,
		AvgWeightPerUnitG: r.AvgWeightPerUnitG,
	}
}

type userRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	Name     string
	FamilyID string `gorm:"index"`
}

func (userRow) TableName() string { return "users" }

type listRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	Name     string
	OwnerID  string `gorm:"index"`
	FamilyID string `gorm:"index"`
}

func (listRow) TableName() string { return "shopping_lists" }

func (r listRow) list() reconcile.List {
	return reconcile.List{ID: r.ID, OwnerID: r.OwnerID, FamilyID: r.FamilyID}
}

// quantityColumns are the columns shared by list and pantry lines.
type quantityColumns struct {
	IngredientID      string `gorm:"index"`
	IngredientName    string
	DisplayQuantity   decimal.NullDecimal `gorm:"type:numeric"`
	DisplayUnit       string
	CanonicalQuantity decimal.NullDecimal `gorm:"type:numeric"`
	CanonicalUnit     string
	Note              string
	AppliedQuantity   decimal.NullDecimal `gorm:"type:numeric"`
	AppliedUnit       string
}

func columnsOf(l reconcile.Line) quantityColumns {
	return quantityColumns{
		IngredientID:      l.IngredientID,
		IngredientName:    l.IngredientName,
		DisplayQuantity:   l.DisplayQuantity,
		DisplayUnit:       l.DisplayUnit,
		CanonicalQuantity: l.CanonicalQuantity,
		CanonicalUnit:     l.CanonicalUnit,
		Note:              l.Note,
		AppliedQuantity:   l.AppliedQuantity,
		AppliedUnit:       l.AppliedUnit,
	}
}

func (c quantityColumns) line(id string) reconcile.Line {
	return reconcile.Line{
		ID:                id,
		IngredientID:      c.IngredientID,
		IngredientName:    c.IngredientName,
		DisplayQuantity:   c.DisplayQuantity,
		DisplayUnit:       c.DisplayUnit,
		CanonicalQuantity: c.CanonicalQuantity,
		CanonicalUnit:     c.CanonicalUnit,
		Note:              c.Note,
		AppliedQuantity:   c.AppliedQuantity,
		AppliedUnit:       c.AppliedUnit,
	}
}

type listLineRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	ListID   string `gorm:"not null;index"`
	Position int    `gorm:"not null"`

	Quantities quantityColumns `gorm:"embedded"`
}

func (listLineRow) TableName() string { return "shopping_list_lines" }

type pantryLineRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	ScopeKind string `gorm:"not null;index:idx_pantry_scope"`
	ScopeID   string `gorm:"not null;index:idx_pantry_scope"`
	Position  int    `gorm:"not null"`

	Quantities quantityColumns `gorm:"embedded"`
}

func (pantryLineRow) TableName() string { return "pantry_lines" }

func linesOf(rows []listLineRow) []reconcile.Line {
	lines := make([]reconcile.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Quantities.line(r.ID))
	}
	return lines
}
