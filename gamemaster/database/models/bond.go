package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EquippableBond attaches a pet to a host unit as a stat augmentation.
// At most one equipped bond per host and per equipped unit. Rows persist
// across unequips so bond history is preserved.
type EquippableBond struct {
	bun.BaseModel `bun:"table:equippable_unit_bonds,alias:eb"`

	BondID               int64     `bun:"bond_id,pk,autoincrement"`
	HostPlayerUnitID     int64     `bun:"host_player_unit_id,notnull"`
	EquippedPlayerUnitID int64     `bun:"equipped_player_unit_id,notnull,unique"`
	CreatedAt            time.Time `bun:"created_at,notnull"`
	IsEquipped           bool      `bun:"is_equipped,notnull,default:true"`

	Host     *PlayerUnit `bun:"rel:belongs-to,join:host_player_unit_id=player_unit_id"`
	Equipped *PlayerUnit `bun:"rel:belongs-to,join:equipped_player_unit_id=player_unit_id"`
}
