package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"tenderlink/database"
	"tenderlink/internal/config"
	"tenderlink/pipeline"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-файлу конфигурации")
	stage := flag.String("stage", "all", "этап конвейера: clean, group, link, analysis, quality или all")
	noClean := flag.Bool("no-clean", false, "не очищать промежуточные каталоги перед полным запуском")
	noDB := flag.Bool("no-db", false, "не сохранять результаты в БД аналитики")
	flag.Parse()

	log.Println("🚀 Запуск конвейера обработки закупочных объявлений...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var store *database.Store
	if !*noDB {
		store, err = database.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Ошибка открытия БД %s: %v", cfg.DatabasePath, err)
		}
		defer store.Close()
	}

	p := pipeline.New(cfg, logger, store)

	switch *stage {
	case "all":
		err = p.RunAll(!*noClean)
	case "clean":
		err = p.RunClean()
	case "group":
		err = p.RunGroup()
	case "link":
		err = p.RunLink()
	case "analysis":
		err = p.RunAnalysis()
	case "quality":
		err = p.RunQuality()
	default:
		log.Fatalf("Неизвестный этап: %s (ожидается clean, group, link, analysis, quality или all)", *stage)
	}
	if err != nil {
		log.Fatalf("Ошибка выполнения конвейера: %v", err)
	}

	log.Println("✅ Конвейер завершен успешно")
}
