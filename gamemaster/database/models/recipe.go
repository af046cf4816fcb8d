package models

import (
	"github.com/uptrace/bun"
)

// Recipe and RecipeIngredient define crafting conversions. The tables are
// part of the persistent schema; crafting execution lives outside the core
// services for now.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:rc"`

	RecipeID  int    `bun:"recipe_id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	OutputItem ItemID `bun:"output_item,notnull"`
	OutputQty int64  `bun:"output_qty,notnull,default:1"`
}

type RecipeIngredient struct {
	bun.BaseModel `bun:"table:recipe_ingredients,alias:ri"`

	RecipeID int    `bun:"recipe_id,pk"`
	ItemID   ItemID `bun:"item_id,pk"`
	Quantity int64  `bun:"quantity,notnull,default:1"`
}
