package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"tenderlink/database"
	"tenderlink/internal/config"
	"tenderlink/server"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-файлу конфигурации")
	flag.Parse()

	log.Println("🚀 Запуск сервера аналитики закупок...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	store, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Ошибка открытия БД %s: %v", cfg.DatabasePath, err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv := server.New(cfg, store, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("Ошибка сервера: %v", err)
	}
}
