package models

import (
	"github.com/uptrace/bun"
)

// ItemID is a closed enum. Item properties live in the registry below; the
// items table only mirrors it so foreign keys hold.
type ItemID string

const (
	ItemHealthPotion      ItemID = "health_potion"
	ItemGreaterPotion     ItemID = "greater_health_potion"
	ItemTamingLure        ItemID = "taming_lure"
	ItemForestParchment   ItemID = "forest_parchment"
	ItemFrontierParchment ItemID = "frontier_parchment"
	ItemGem               ItemID = "gem"
	ItemWolfResearch      ItemID = "wolf_research_notes"
	ItemBoarResearch      ItemID = "boar_research_notes"
	ItemSlimeResearch     ItemID = "slime_research_notes"
	ItemRaptorResearch    ItemID = "raptor_research_notes"
	ItemDrakeResearch     ItemID = "drake_research_notes"
	ItemIronOre           ItemID = "iron_ore"
	ItemOakLog            ItemID = "oak_log"
	ItemRiverFish         ItemID = "river_fish"
)

type ItemCategory string

const (
	CategoryConsumable ItemCategory = "consumable"
	CategoryMaterial   ItemCategory = "material"
	CategoryContract   ItemCategory = "contract"
	CategoryResearch   ItemCategory = "research"
)

// ItemInfo carries the static per-item properties.
type ItemInfo struct {
	ID          ItemID
	DisplayName string
	Description string
	Rarity      Rarity
	Category    ItemCategory
	Sellable    bool
	Tradeable   bool
	BuyPrice    int64 // 0 = not purchasable
	SellPrice   int64
	// HealAmount is set for battle-usable potions.
	HealAmount int
	// ResearchUnitName links a research item back to its pet by master name.
	ResearchUnitName string
}

var itemRegistry = map[ItemID]ItemInfo{
	ItemHealthPotion: {
		ID: ItemHealthPotion, DisplayName: "Health Potion",
		Description: "Restores 25 HP to an injured party member mid-battle.",
		Rarity:      RarityCommon,
		Category:    CategoryConsumable, Sellable: true, Tradeable: true,
		BuyPrice: 40, SellPrice: 15, HealAmount: 25,
	},
	ItemGreaterPotion: {
		ID: ItemGreaterPotion, DisplayName: "Greater Health Potion",
		Description: "Restores 60 HP to an injured party member mid-battle.",
		Rarity:      RarityRare,
		Category:    CategoryConsumable, Sellable: true, Tradeable: true,
		BuyPrice: 120, SellPrice: 45, HealAmount: 60,
	},
	ItemTamingLure: {
		ID: ItemTamingLure, DisplayName: "Taming Lure",
		Description: "Consumed on every taming attempt against a wild pet.",
		Rarity:      RarityRare,
		Category:    CategoryConsumable, Sellable: true, Tradeable: true,
		BuyPrice: 200, SellPrice: 70,
	},
	ItemForestParchment: {
		ID: ItemForestParchment, DisplayName: "Forest Contract Parchment",
		Description: "Binds a contract for Rare humans once they are worn down.",
		Rarity:      RarityRare,
		Category:    CategoryContract, Sellable: false, Tradeable: true,
		BuyPrice: 350, SellPrice: 0,
	},
	ItemFrontierParchment: {
		ID: ItemFrontierParchment, DisplayName: "Frontier Contract Parchment",
		Description: "Binds a contract for Epic and stronger humans.",
		Rarity:      RarityEpic,
		Category:    CategoryContract, Sellable: false, Tradeable: true,
		BuyPrice: 900, SellPrice: 0,
	},
	ItemGem: {
		ID: ItemGem, DisplayName: "Gem",
		Description: "A cut stone with no use beyond its sale price.",
		Rarity:      RarityEpic,
		Category:    CategoryMaterial, Sellable: true, Tradeable: true,
		SellPrice: 150,
	},
	ItemWolfResearch: {
		ID: ItemWolfResearch, DisplayName: "Wolf Research Notes",
		Description: "Field notes on wolves. Collect enough and one joins you.",
		Rarity:      RarityCommon,
		Category:    CategoryResearch, Sellable: false, Tradeable: false,
		ResearchUnitName: "Wolf",
	},
	ItemBoarResearch: {
		ID: ItemBoarResearch, DisplayName: "Boar Research Notes",
		Description: "Field notes on boars. Collect enough and one joins you.",
		Rarity:      RarityCommon,
		Category:    CategoryResearch, Sellable: false, Tradeable: false,
		ResearchUnitName: "Boar",
	},
	ItemSlimeResearch: {
		ID: ItemSlimeResearch, DisplayName: "Slime Research Notes",
		Description: "Field notes on slimes. Collect enough and one joins you.",
		Rarity:      RarityCommon,
		Category:    CategoryResearch, Sellable: false, Tradeable: false,
		ResearchUnitName: "Slime",
	},
	ItemRaptorResearch: {
		ID: ItemRaptorResearch, DisplayName: "Raptor Research Notes",
		Description: "Field notes on raptors. Collect enough and one joins you.",
		Rarity:      RarityRare,
		Category:    CategoryResearch, Sellable: false, Tradeable: false,
		ResearchUnitName: "Raptor",
	},
	ItemDrakeResearch: {
		ID: ItemDrakeResearch, DisplayName: "Drake Research Notes",
		Description: "Field notes on drakes. Collect enough and one joins you.",
		Rarity:      RarityEpic,
		Category:    CategoryResearch, Sellable: false, Tradeable: false,
		ResearchUnitName: "Drake",
	},
	ItemIronOre: {
		ID: ItemIronOre, DisplayName: "Iron Ore",
		Description: "Raw ore dropped across the frontier nodes.",
		Rarity:      RarityCommon,
		Category:    CategoryMaterial, Sellable: true, Tradeable: true,
		SellPrice: 8,
	},
	ItemOakLog: {
		ID: ItemOakLog, DisplayName: "Oak Log",
		Description: "Solid timber from the forest nodes.",
		Rarity:      RarityCommon,
		Category:    CategoryMaterial, Sellable: true, Tradeable: true,
		SellPrice: 5,
	},
	ItemRiverFish: {
		ID: ItemRiverFish, DisplayName: "River Fish",
		Description: "A common catch from a fishing shift.",
		Rarity:      RarityCommon,
		Category:    CategoryMaterial, Sellable: true, Tradeable: true,
		SellPrice: 6,
	},
}

// GetItemInfo looks up the static properties of an item id.
func GetItemInfo(id ItemID) (ItemInfo, bool) {
	info, ok := itemRegistry[id]
	return info, ok
}

// AllItems returns the full registry. Callers must not mutate entries.
func AllItems() map[ItemID]ItemInfo {
	return itemRegistry
}

// ResearchItemForUnit maps a pet master name to its research item, if any.
func ResearchItemForUnit(unitName string) (ItemID, bool) {
	for id, info := range itemRegistry {
		if info.ResearchUnitName != "" && info.ResearchUnitName == unitName {
			return id, true
		}
	}
	return "", false
}

// BattleUsableItems is the whitelist accepted by the battle item sub-state.
var BattleUsableItems = []ItemID{ItemHealthPotion, ItemGreaterPotion}

func IsBattleUsable(id ItemID) bool {
	for _, allowed := range BattleUsableItems {
		if id == allowed {
			return true
		}
	}
	return false
}

// Item mirrors the registry into the items relation.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:it"`

	ItemID      ItemID       `bun:"item_id,pk"`
	DisplayName string       `bun:"display_name,notnull"`
	Rarity      Rarity       `bun:"rarity,notnull"`
	Category    ItemCategory `bun:"category,notnull"`
	Sellable    bool         `bun:"sellable,notnull"`
	Tradeable   bool         `bun:"tradeable,notnull"`
	BuyPrice    int64        `bun:"buy_price,notnull,default:0"`
	SellPrice   int64        `bun:"sell_price,notnull,default:0"`
}

// InventoryEntry is a (user, item) quantity row, quantity >= 0.
type InventoryEntry struct {
	bun.BaseModel `bun:"table:inventories,alias:inv"`

	UserID   string `bun:"user_id,pk"`
	ItemID   ItemID `bun:"item_id,pk"`
	Quantity int64  `bun:"quantity,notnull,default:0"`
}
