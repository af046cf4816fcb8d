package gamemaster

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	gmcache "github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/repositories"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/services"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	UserCaches *gmcache.UserCaches

	ProfileRepository    repositories.ProfileRepository
	UnitRepository       repositories.UnitRepository
	PlayerUnitRepository repositories.PlayerUnitRepository
	BondRepository       repositories.BondRepository
	ContractRepository   repositories.ContractRepository
	ResearchRepository   repositories.ResearchRepository
	TavernRepository     repositories.TavernRepository
	InventoryRepository  repositories.InventoryRepository
	NodeRepository       repositories.NodeRepository
	TaskRepository       repositories.TaskRepository
	QuestRepository      repositories.QuestRepository
	ConfigRepository     repositories.ConfigRepository

	ConfigService   *services.ConfigService
	SagaService     *services.SagaService
	UnitService     *services.UnitService
	ContractService *services.ContractService
	TavernService   *services.TavernService
	TaskService     *services.TaskService
	QuestService    *services.QuestService
	BattleService   *services.BattleService
	WorkService     *services.WorkService
}

// InitServices builds the repository and service graph on top of the
// connected database. Order matters: the saga and config services feed the
// rest.
func (b *Bot) InitServices() {
	bunDB := b.DB.BunDB()
	b.UserCaches = gmcache.NewUserCaches()

	b.ProfileRepository = repositories.NewProfileRepository(bunDB)
	b.UnitRepository = repositories.NewUnitRepository(bunDB)
	b.PlayerUnitRepository = repositories.NewPlayerUnitRepository(bunDB)
	b.BondRepository = repositories.NewBondRepository(bunDB)
	b.ContractRepository = repositories.NewContractRepository(bunDB)
	b.ResearchRepository = repositories.NewResearchRepository(bunDB)
	b.TavernRepository = repositories.NewTavernRepository(bunDB)
	b.InventoryRepository = repositories.NewInventoryRepository(bunDB)
	b.NodeRepository = repositories.NewNodeRepository(bunDB)
	b.TaskRepository = repositories.NewTaskRepository(bunDB)
	b.QuestRepository = repositories.NewQuestRepository(bunDB)
	b.ConfigRepository = repositories.NewConfigRepository(bunDB)

	b.ConfigService = services.NewConfigService(b.ConfigRepository)
	b.SagaService = services.NewSagaService(bunDB, b.PlayerUnitRepository, b.UnitRepository, b.ConfigService, b.UserCaches)
	b.UnitService = services.NewUnitService(bunDB, b.UnitRepository, b.PlayerUnitRepository, b.BondRepository, b.ResearchRepository, b.SagaService, b.ConfigService, b.UserCaches)
	b.ContractService = services.NewContractService(bunDB, b.UnitRepository, b.ContractRepository, b.PlayerUnitRepository, b.UserCaches)
	b.TavernService = services.NewTavernService(bunDB, b.UnitRepository, b.ProfileRepository, b.TavernRepository, b.SagaService, b.UserCaches)
	b.TaskService = services.NewTaskService(bunDB, b.TaskRepository, b.UserCaches)
	b.QuestService = services.NewQuestService(bunDB, b.QuestRepository, b.UserCaches)
	b.BattleService = services.NewBattleService(bunDB, b.NodeRepository, b.UnitRepository, b.UnitService, b.SagaService, b.ContractService, b.TaskService)
	b.WorkService = services.NewWorkService(bunDB, b.UserCaches)
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Gamemaster is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithPlayingActivity("the long campaign"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
