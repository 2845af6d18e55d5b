package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/m3rciful/noterbot/core/buildinfo"
	corecmd "github.com/m3rciful/noterbot/core/cmd"
	"github.com/m3rciful/noterbot/internal/app"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log.Printf("noterbot %s (%s) built %s", buildinfo.Version, buildinfo.Commit, buildinfo.Date)

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("noterbot: %v", err)
	}
}
