// main is the entry point for the cadence CLI.
package main

import (
	"github.com/huangsam/cadence/cmd"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal; CADENCE_* variables may come from the shell.
	_ = godotenv.Load()

	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseCaching()
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
