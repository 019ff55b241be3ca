package main

import (
	"log/slog"

	"github.com/qintermediary/exchangeflow/pkg/exchangeflow"
)

func main() {

	//you may do your own logger setup here or use this default one with slog
	exchangeflow.SetupLogger()

	if err := exchangeflow.Start(nil); err != nil {
		slog.Error("Server exited with error", "error", err)
	}
}
