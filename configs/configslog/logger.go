package configslog

import (
	"go.uber.org/zap"
)

// Log is the shared structured logger. SLog is its sugared twin for
// printf-style call sites. Both are set by InitLogger.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

// InitLogger builds the global loggers. Production mode switches to JSON
// output with sampling; development keeps the console encoder.
func InitLogger(production bool) {
	var err error
	if production {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	SLog = Log.Sugar()
}

// SyncLogger flushes buffered log entries. Call via defer in main.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
