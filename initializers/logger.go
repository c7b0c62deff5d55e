package initializers

import (
	"os"

	"go.uber.org/zap"
)

// Log is safe to use before InitLogger runs (tests, early init); it is a
// no-op until then.
var Log = zap.NewNop().Sugar()

func InitLogger() {
	var cfg zap.Config
	if os.Getenv("GIN_MODE") == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = logger.Sugar()
}
