package services

import (
	"math"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

// EquipmentBonus is the stat contribution of one equipped bond to its host.
type EquipmentBonus struct {
	Attack  int
	Defense int
	Health  int
}

// ComputeEquipmentBonus derives the host bonus from the equipped pet's live
// stats, level, and rarity:
//
//	base_factor = rarity_mult + sqrt(level)/10
//	attack  = ceil(atk * base_factor)
//	defense = ceil(def * base_factor * 0.8)
//	health  = ceil(hp  * base_factor * 1.2)
func ComputeEquipmentBonus(attack, defense, health, level int, rarity models.Rarity) EquipmentBonus {
	baseFactor := rarity.EquipBonusMultiplier() + math.Sqrt(float64(level))/10
	return EquipmentBonus{
		Attack:  int(math.Ceil(float64(attack) * baseFactor)),
		Defense: int(math.Ceil(float64(defense) * baseFactor * 0.8)),
		Health:  int(math.Ceil(float64(health) * baseFactor * 1.2)),
	}
}
