package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// SQLiteInspectionRepository история осмотров в SQLite.
// Снимки с разметкой отдаёт только Get, List их не подгружает.
type SQLiteInspectionRepository struct {
	db *DB
}

// NewSQLiteInspectionRepository создаёт репозиторий поверх открытой базы.
func NewSQLiteInspectionRepository(db *DB) *SQLiteInspectionRepository {
	return &SQLiteInspectionRepository{db: db}
}

// Save сохраняет осмотр целиком в одной транзакции.
func (r *SQLiteInspectionRepository) Save(ctx context.Context, result *entity.InspectionResult) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inspections (id, grade, damage_score, battery_health, screen_condition,
			back_condition, frame_condition, summary, overall_assessment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.Grade.String(), result.DamageScore, result.BatteryHealth,
		result.Report.ScreenCondition, result.Report.BackCondition, result.Report.FrameCondition,
		result.Report.Summary, result.Report.OverallAssessment, result.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert inspection: %w", err)
	}

	damageStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO damages (inspection_id, position, type, location, severity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer damageStmt.Close()

	for i, d := range result.Damages {
		if _, err := damageStmt.ExecContext(ctx, result.ID, i, d.Type, d.Location, d.Severity.String()); err != nil {
			return fmt.Errorf("failed to insert damage: %w", err)
		}
	}

	detStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detections (inspection_id, view, position, class_label, confidence, x1, y1, x2, y2, mask_area)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer detStmt.Close()

	for _, view := range entity.InspectedViews {
		for i, d := range result.Detections[view] {
			if _, err := detStmt.ExecContext(ctx, result.ID, string(view), i, d.ClassLabel, d.Confidence,
				d.BBox.X1, d.BBox.Y1, d.BBox.X2, d.BBox.Y2, d.MaskArea); err != nil {
				return fmt.Errorf("failed to insert detection: %w", err)
			}
		}
	}

	renderStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO renders (inspection_id, view, image) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer renderStmt.Close()

	for _, view := range entity.InspectedViews {
		data, ok := result.Visualized[view]
		if !ok {
			continue
		}
		if _, err := renderStmt.ExecContext(ctx, result.ID, string(view), data); err != nil {
			return fmt.Errorf("failed to insert render: %w", err)
		}
	}

	return tx.Commit()
}

// Get возвращает осмотр по ID или entity.ErrNotFound.
func (r *SQLiteInspectionRepository) Get(ctx context.Context, id string) (*entity.InspectionResult, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, selectInspection+` WHERE id = ?`, id)
	result, err := scanInspection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inspection %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, result); err != nil {
		return nil, err
	}
	if result.Visualized, err = r.loadRenders(ctx, result.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// List возвращает последние осмотры, новые первыми.
func (r *SQLiteInspectionRepository) List(ctx context.Context, limit int) ([]*entity.InspectionResult, error) {
	if limit <= 0 {
		limit = 50
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, selectInspection+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}

	var results []*entity.InspectionResult
	for rows.Next() {
		result, err := scanInspection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, result)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inspections: %w", err)
	}

	for _, result := range results {
		if err := r.loadDetails(ctx, result); err != nil {
			return nil, err
		}
	}
	return results, nil
}

const selectInspection = `
	SELECT id, grade, damage_score, battery_health, screen_condition, back_condition,
		frame_condition, summary, overall_assessment, created_at
	FROM inspections`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (*entity.InspectionResult, error) {
	var (
		result    entity.InspectionResult
		grade     string
		createdAt int64
	)
	err := row.Scan(&result.ID, &grade, &result.DamageScore, &result.BatteryHealth,
		&result.Report.ScreenCondition, &result.Report.BackCondition, &result.Report.FrameCondition,
		&result.Report.Summary, &result.Report.OverallAssessment, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inspection: %w", err)
	}

	if result.Grade, err = entity.ParseGrade(grade); err != nil {
		return nil, fmt.Errorf("inspection %s: %w", result.ID, err)
	}
	result.CreatedAt = time.Unix(0, createdAt).UTC()
	return &result, nil
}

// loadDetails подтягивает повреждения и срабатывания. Вызывается под RLock.
// Соединение одно, поэтому выборки идут строго друг за другом.
func (r *SQLiteInspectionRepository) loadDetails(ctx context.Context, result *entity.InspectionResult) error {
	damages, err := r.loadDamages(ctx, result.ID)
	if err != nil {
		return err
	}
	result.Damages = damages

	detections, err := r.loadDetections(ctx, result.ID)
	if err != nil {
		return err
	}
	result.Detections = detections
	return nil
}

func (r *SQLiteInspectionRepository) loadDamages(ctx context.Context, id string) ([]entity.Damage, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT type, location, severity FROM damages
		WHERE inspection_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query damages: %w", err)
	}
	defer rows.Close()

	damages := []entity.Damage{}
	for rows.Next() {
		var (
			d        entity.Damage
			severity string
		)
		if err := rows.Scan(&d.Type, &d.Location, &severity); err != nil {
			return nil, fmt.Errorf("failed to scan damage: %w", err)
		}
		if d.Severity, err = entity.ParseSeverity(severity); err != nil {
			return nil, fmt.Errorf("inspection %s: %w", id, err)
		}
		damages = append(damages, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate damages: %w", err)
	}
	return damages, nil
}

func (r *SQLiteInspectionRepository) loadDetections(ctx context.Context, id string) (map[entity.View][]entity.Detection, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT view, class_label, confidence, x1, y1, x2, y2, mask_area FROM detections
		WHERE inspection_id = ? ORDER BY view, position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	detections := make(map[entity.View][]entity.Detection)
	for rows.Next() {
		var (
			d    entity.Detection
			view string
		)
		if err := rows.Scan(&view, &d.ClassLabel, &d.Confidence,
			&d.BBox.X1, &d.BBox.Y1, &d.BBox.X2, &d.BBox.Y2, &d.MaskArea); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		d.View = entity.View(view)
		detections[d.View] = append(detections[d.View], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detections: %w", err)
	}
	return detections, nil
}

func (r *SQLiteInspectionRepository) loadRenders(ctx context.Context, id string) (map[entity.View][]byte, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT view, image FROM renders WHERE inspection_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query renders: %w", err)
	}
	defer rows.Close()

	renders := make(map[entity.View][]byte)
	for rows.Next() {
		var (
			view string
			data []byte
		)
		if err := rows.Scan(&view, &data); err != nil {
			return nil, fmt.Errorf("failed to scan render: %w", err)
		}
		renders[entity.View(view)] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate renders: %w", err)
	}
	return renders, nil
}

var _ port.InspectionRepository = (*SQLiteInspectionRepository)(nil)
