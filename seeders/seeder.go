package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDemo наполняет БД демонстрационным оборудованием, группами, документами и запчастями.
// Все таблицы предметной области предварительно очищаются.
func SeedDemo(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения демонстрационными данными...")

	if err := seedEquipments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Наполнение демонстрационными данными завершено!")
}
