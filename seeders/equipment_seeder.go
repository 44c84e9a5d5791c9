package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedEquipments(ctx context.Context, db *pgxpool.Pool) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE TABLE interventions, equipment_history, part_equipments, part_group_members,
		parts, document_equipments, document_group_members, documents, equipment_group_members,
		equipment_groups, equipments RESTART IDENTITY CASCADE`); err != nil {
		return err
	}

	// --- ШАГ 1: группы ---
	log.Println("  - Наполнение таблицы 'equipment_groups'...")
	groupIDs := make(map[string]int64, len(groupsData))
	for _, g := range groupsData {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO equipment_groups (name, description) VALUES ($1, NULLIF($2, '')) RETURNING id`,
			g.Name, g.Description,
		).Scan(&id); err != nil {
			return fmt.Errorf("группа '%s': %w", g.Name, err)
		}
		groupIDs[g.Name] = id
	}

	// --- ШАГ 2: оборудование и членство в группах ---
	log.Println("  - Наполнение таблицы 'equipments'...")
	equipmentIDs := make(map[string]int64, len(equipmentsData))
	for _, e := range equipmentsData {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO equipments (name, model, manufacturer, serial_number, status, health_percentage, description)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			e.Name, e.Model, e.Manufacturer, e.SerialNumber, e.Status, e.Health, groupDescription(e.Groups),
		).Scan(&id); err != nil {
			return fmt.Errorf("оборудование '%s': %w", e.Name, err)
		}
		equipmentIDs[e.SerialNumber] = id

		if err := link(ctx, tx, "equipment_group_members", "equipment_id", "group_id", id, e.Groups, groupIDs); err != nil {
			return err
		}
	}

	// --- ШАГ 3: документы и запчасти ---
	log.Println("  - Наполнение таблиц 'documents' и 'parts'...")
	for _, d := range documentsData {
		var id int64
		if err := tx.QueryRow(ctx, `INSERT INTO documents (title, category) VALUES ($1, $2) RETURNING id`, d.Title, d.Category).Scan(&id); err != nil {
			return fmt.Errorf("документ '%s': %w", d.Title, err)
		}
		if err := link(ctx, tx, "document_group_members", "document_id", "group_id", id, d.Groups, groupIDs); err != nil {
			return err
		}
		if err := link(ctx, tx, "document_equipments", "document_id", "equipment_id", id, d.Equipments, equipmentIDs); err != nil {
			return err
		}
	}
	for _, p := range partsData {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO parts (name, reference, quantity, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`,
			p.Name, p.Reference, p.Quantity, p.UnitPrice,
		).Scan(&id); err != nil {
			return fmt.Errorf("запчасть '%s': %w", p.Name, err)
		}
		if err := link(ctx, tx, "part_group_members", "part_id", "group_id", id, p.Groups, groupIDs); err != nil {
			return err
		}
		if err := link(ctx, tx, "part_equipments", "part_id", "equipment_id", id, p.Equipments, equipmentIDs); err != nil {
			return err
		}
	}

	log.Printf("  - Создано: групп %d, оборудования %d, документов %d, запчастей %d",
		len(groupsData), len(equipmentsData), len(documentsData), len(partsData))
	return tx.Commit(ctx)
}

// link пишет строки связи; имена таблиц и колонок только из кода сидера.
func link(ctx context.Context, tx pgx.Tx, table, memberColumn, targetColumn string, memberID int64, names []string, ids map[string]int64) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, memberColumn, targetColumn)
	for _, name := range names {
		targetID, ok := ids[name]
		if !ok {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: '%s' не найден, связь в %s пропущена.", name, table)
			continue
		}
		if _, err := tx.Exec(ctx, query, memberID, targetID); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

// groupDescription - описание первой группы с непустым описанием, как при назначении групп через API.
func groupDescription(groups []string) *string {
	for _, name := range groups {
		for _, g := range groupsData {
			if g.Name == name && g.Description != "" {
				d := g.Description
				return &d
			}
		}
	}
	return nil
}
