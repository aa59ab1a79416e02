package main

import (
	"go.uber.org/fx"

	"github.com/andrasnagy-data/voicelog/internal/components/auth"
	"github.com/andrasnagy-data/voicelog/internal/components/calorie"
	"github.com/andrasnagy-data/voicelog/internal/components/diary"
	"github.com/andrasnagy-data/voicelog/internal/components/voice"
	"github.com/andrasnagy-data/voicelog/internal/server"
	"github.com/andrasnagy-data/voicelog/internal/shared/config"
	"github.com/andrasnagy-data/voicelog/internal/shared/database"
	"github.com/andrasnagy-data/voicelog/internal/shared/events"
	"github.com/andrasnagy-data/voicelog/internal/shared/logging"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logging.NewLogger,
			database.NewPgxPool,
			events.NewPublisher,
			server.NewServer,
			server.NewHealthSrvc,
			server.NewHealthHandler,
			diary.NewRepo,
			diary.NewService,
			fx.Annotate(diary.NewRouter, fx.ResultTags(`name:"logsRouter"`)),
			voice.NewExtractor,
			voice.NewService,
			fx.Annotate(voice.NewRouter, fx.ResultTags(`name:"voiceRouter"`)),
			fx.Annotate(calorie.NewRouter, fx.ResultTags(`name:"calorieRouter"`)),
			auth.NewAuthService,
			fx.Annotate(auth.NewRouter, fx.ResultTags(`name:"authRouter"`)),
		),
		fx.Invoke(server.Register),
	).Run()
}
