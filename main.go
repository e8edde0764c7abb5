// @title HilFo Survey Backend API
// @version 1.0
// @description Session-scoped bilingual survey delivery service.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"hilfo_survey_backend/internal/app"
	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/pkg/logger"
)

func main() {
	validateOnly := flag.Bool("validate-only", false, "validate the study catalogs and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *validateOnly {
		cat, err := catalog.Load(cfg.Study.ItemBankPath, cfg.Study.PagePlanPath, cfg.Study.FieldsPath)
		if err != nil {
			log.Fatalf("Catalog validation failed: %v", err)
		}
		log.Printf("Catalogs valid: %d items, %d pages, %d fields",
			cat.Items.Len(), len(cat.Plan.Pages), len(cat.Fields))
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
