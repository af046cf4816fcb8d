package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/cache"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/config"
)

var Metrics = discord.SlashCommandCreate{
	Name:        "metrics",
	Description: "📊 Runtime health of the gamemaster",
}

var processStart = time.Now()

func MetricsHandler(b *gamemaster.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		hits, misses := cache.Stats()
		total := hits + misses
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total) * 100
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "📊 Metrics",
				Color: config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "Version", Value: fmt.Sprintf("%s (%s)", b.Version, b.Commit)},
					{Name: "Uptime", Value: time.Since(processStart).Round(time.Second).String()},
					{Name: "Cache", Value: fmt.Sprintf("%d hits / %d misses (%.1f%%)", hits, misses, hitRate)},
					{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine())},
					{Name: "Heap", Value: fmt.Sprintf("%.1f MiB", float64(mem.HeapAlloc)/1024/1024)},
				},
			}},
		})
	}
}
