package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
)

// ConfigService reads runtime tunables from bot_config with a short TTL
// cache in front.
type ConfigService struct {
	repo  repositories.ConfigRepository
	cache *cache.TTL[string, string]
}

func NewConfigService(repo repositories.ConfigRepository) *ConfigService {
	return &ConfigService{
		repo:  repo,
		cache: cache.NewTTL[string, string](),
	}
}

// Get returns the configured value for key, or fallback when unset.
func (s *ConfigService) Get(ctx context.Context, key, fallback string) (string, error) {
	if v, ok := s.cache.GetWithTTL(key, config.ConfigCacheTTL); ok {
		return v, nil
	}
	v, found, err := s.repo.Get(ctx, key)
	if err != nil {
		return fallback, err
	}
	if !found {
		return fallback, nil
	}
	s.cache.Insert(key, v)
	return v, nil
}

func (s *ConfigService) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	raw, err := s.Get(ctx, key, strconv.Itoa(fallback))
	if err != nil {
		return fallback, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("config key %s holds non-integer %q", key, raw)
	}
	return n, nil
}

func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	s.cache.Insert(key, value)
	return nil
}

// ResearchTarget is the tamed count required before a pet of the given
// rarity may join the party through taming.
func (s *ConfigService) ResearchTarget(ctx context.Context, rarity models.Rarity) (int, error) {
	switch rarity {
	case models.RarityCommon:
		return s.GetInt(ctx, models.ConfigResearchTargetCommon, 5)
	case models.RarityRare:
		return s.GetInt(ctx, models.ConfigResearchTargetRare, 10)
	case models.RarityEpic:
		return s.GetInt(ctx, models.ConfigResearchTargetEpic, 18)
	default:
		// Legendary and above skip research entirely.
		return s.GetInt(ctx, models.ConfigResearchTargetHigh, 0)
	}
}
