package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

type NodeRepository interface {
	GetNode(ctx context.Context, nodeID int) (*models.MapNode, error)
	ListNodes(ctx context.Context) ([]*models.MapNode, error)
	GetEnemies(ctx context.Context, nodeID int) ([]*models.NodeEnemy, error)
	GetRewards(ctx context.Context, nodeID int) ([]*models.NodeReward, error)
}

type nodeRepository struct {
	db *bun.DB
}

func NewNodeRepository(db *bun.DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) GetNode(ctx context.Context, nodeID int) (*models.MapNode, error) {
	node := new(models.MapNode)
	err := r.db.NewSelect().
		Model(node).
		Where("node_id = ?", nodeID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("map node %d not found", nodeID)
		}
		return nil, err
	}
	return node, nil
}

func (r *nodeRepository) ListNodes(ctx context.Context) ([]*models.MapNode, error) {
	var nodes []*models.MapNode
	err := r.db.NewSelect().
		Model(&nodes).
		Order("node_id ASC").
		Scan(ctx)
	return nodes, err
}

func (r *nodeRepository) GetEnemies(ctx context.Context, nodeID int) ([]*models.NodeEnemy, error) {
	var enemies []*models.NodeEnemy
	err := r.db.NewSelect().
		Model(&enemies).
		Relation("Unit").
		Where("ne.node_id = ?", nodeID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load node enemies: %w", err)
	}
	return enemies, nil
}

func (r *nodeRepository) GetRewards(ctx context.Context, nodeID int) ([]*models.NodeReward, error) {
	var rewards []*models.NodeReward
	err := r.db.NewSelect().
		Model(&rewards).
		Where("node_id = ?", nodeID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load node rewards: %w", err)
	}
	return rewards, nil
}
