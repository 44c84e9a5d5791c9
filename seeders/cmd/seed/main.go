package main

import (
	"context"
	"flag"
	"log"

	"gmao-system/pkg/config"
	"gmao-system/pkg/database/postgresql"
	"gmao-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runDemo := flag.Bool("demo", false, "Очистить таблицы и наполнить демонстрационными данными")
	migrate := flag.Bool("migrate", true, "Применить миграции перед наполнением")
	flag.Parse()

	if !*runDemo {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример использования:")
		log.Println("  go run ./seeders/cmd/seed -demo")
		return
	}

	cfg := config.New()
	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if *migrate {
		if err := postgresql.Migrate(ctx, dbPool); err != nil {
			log.Fatalf("❌ Ошибка миграций: %v", err)
		}
	}

	seeders.SeedDemo(dbPool)
	log.Println("======================================================")
}
