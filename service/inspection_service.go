package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"inspection-service/config"
	imgpkg "inspection-service/image"
	"inspection-service/models"
)

// ErrNotFound is returned when an inspection id does not exist.
var ErrNotFound = fmt.Errorf("inspection not found")

// InspectionService owns inspection persistence: records are stored in
// MySQL with the vehicle list (including photo data URIs) serialized as a
// JSON column.
type InspectionService struct {
	db     *sql.DB
	config *config.Config
}

// NewInspectionService connects to the database and ensures the schema
// exists.
func NewInspectionService(cfg *config.Config) (*InspectionService, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break
		} else {
			log.WithError(err).Warnf("Database connection failed, retrying in %v", waitInterval)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2 // Exponential backoff: 1s, 2s, 4s, 8s, ...
	}

	if err := verifyAndCreateTables(db); err != nil {
		return nil, fmt.Errorf("failed to verify/create tables: %w", err)
	}

	return &InspectionService{
		db:     db,
		config: cfg,
	}, nil
}

// newWithDB wires the service over an existing connection, used by tests.
func newWithDB(db *sql.DB, cfg *config.Config) *InspectionService {
	return &InspectionService{db: db, config: cfg}
}

// Close closes the database connection
func (s *InspectionService) Close() error {
	return s.db.Close()
}

// Create stores a new inspection record, assigning its id and timestamps.
func (s *InspectionService) Create(ctx context.Context, inspection *models.InspectionRecord) error {
	inspection.ID = uuid.New().String()
	now := time.Now().UTC()
	inspection.CreatedAt = now
	inspection.UpdatedAt = now
	if inspection.InspectionDate.IsZero() {
		inspection.InspectionDate = now
	}
	for i := range inspection.Vehicles {
		if inspection.Vehicles[i].ID == "" {
			inspection.Vehicles[i].ID = uuid.New().String()
		}
	}

	vehiclesJSON, err := json.Marshal(inspection.Vehicles)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicles: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO inspections
			(id, agent_name, insured_name, policy_number, inspection_date, vehicles_json,
			 pdf_generated, email_sent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, false, false, ?, ?)
	`, inspection.ID, inspection.AgentName, inspection.InsuredName, inspection.PolicyNumber,
		inspection.InspectionDate, vehiclesJSON, inspection.CreatedAt, inspection.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert inspection: %w", err)
	}

	log.Infof("Created inspection %s with %d vehicles", inspection.ID, len(inspection.Vehicles))
	return nil
}

// Get loads one inspection by id.
func (s *InspectionService) Get(ctx context.Context, id string) (*models.InspectionRecord, error) {
	var inspection models.InspectionRecord
	var vehiclesJSON []byte
	var recipient sql.NullString
	var sentAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, agent_name, insured_name, policy_number, inspection_date, vehicles_json,
		       pdf_generated, email_sent, recipient, sent_at, created_at, updated_at
		FROM inspections
		WHERE id = ?
	`, id).Scan(
		&inspection.ID,
		&inspection.AgentName,
		&inspection.InsuredName,
		&inspection.PolicyNumber,
		&inspection.InspectionDate,
		&vehiclesJSON,
		&inspection.PdfGenerated,
		&inspection.EmailSent,
		&recipient,
		&sentAt,
		&inspection.CreatedAt,
		&inspection.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inspection %s: %w", id, err)
	}

	if err := json.Unmarshal(vehiclesJSON, &inspection.Vehicles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicles for inspection %s: %w", id, err)
	}
	inspection.Recipient = recipient.String
	if sentAt.Valid {
		inspection.SentAt = &sentAt.Time
	}

	return &inspection, nil
}

// List returns inspection summaries, newest first. Vehicle photo payloads
// are included as stored; callers that only need the listing should project
// the fields they use.
func (s *InspectionService) List(ctx context.Context, limit int) ([]models.InspectionRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_name, insured_name, policy_number, inspection_date,
		       pdf_generated, email_sent, created_at, updated_at
		FROM inspections
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []models.InspectionRecord
	for rows.Next() {
		var inspection models.InspectionRecord
		if err := rows.Scan(
			&inspection.ID,
			&inspection.AgentName,
			&inspection.InsuredName,
			&inspection.PolicyNumber,
			&inspection.InspectionDate,
			&inspection.PdfGenerated,
			&inspection.EmailSent,
			&inspection.CreatedAt,
			&inspection.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inspections = append(inspections, inspection)
	}

	return inspections, rows.Err()
}

// Update replaces the editable fields of an inspection.
func (s *InspectionService) Update(ctx context.Context, inspection *models.InspectionRecord) error {
	vehiclesJSON, err := json.Marshal(inspection.Vehicles)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicles: %w", err)
	}

	inspection.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE inspections
		SET agent_name = ?, insured_name = ?, policy_number = ?, inspection_date = ?,
		    vehicles_json = ?, updated_at = ?
		WHERE id = ?
	`, inspection.AgentName, inspection.InsuredName, inspection.PolicyNumber,
		inspection.InspectionDate, vehiclesJSON, inspection.UpdatedAt, inspection.ID)
	if err != nil {
		return fmt.Errorf("failed to update inspection %s: %w", inspection.ID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an inspection.
func (s *InspectionService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM inspections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete inspection %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}

	log.Infof("Deleted inspection %s", id)
	return nil
}

// AttachPhoto runs the capture-time compression filter on the uploaded image
// and stores it as a data URI in the vehicle's photo slot.
func (s *InspectionService) AttachPhoto(ctx context.Context, inspectionID, vehicleID string, category models.PhotoCategory, imageData []byte, note string) (*models.Photo, error) {
	inspection, err := s.Get(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	compressed, err := imgpkg.Compress(imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to compress photo: %w", err)
	}

	photo := &models.Photo{
		ID:        uuid.New().String(),
		Category:  category,
		Name:      category.DisplayName(),
		Note:      note,
		ImageData: models.EncodeJPEGDataURI(compressed),
	}

	attached := false
	for i := range inspection.Vehicles {
		if inspection.Vehicles[i].ID == vehicleID {
			if inspection.Vehicles[i].Photos == nil {
				inspection.Vehicles[i].Photos = make(map[models.PhotoCategory]*models.Photo)
			}
			inspection.Vehicles[i].Photos[category] = photo
			attached = true
			break
		}
	}
	if !attached {
		return nil, fmt.Errorf("vehicle %s not found in inspection %s", vehicleID, inspectionID)
	}

	if err := s.Update(ctx, inspection); err != nil {
		return nil, err
	}

	log.Infof("Attached %s photo %s to vehicle %s of inspection %s", category, photo.ID, vehicleID, inspectionID)
	return photo, nil
}

// MarkPdfGenerated records that a report PDF has been produced for the
// inspection.
func (s *InspectionService) MarkPdfGenerated(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inspections SET pdf_generated = true, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark inspection %s as generated: %w", id, err)
	}
	return nil
}

// MarkEmailSent records a successful report delivery.
func (s *InspectionService) MarkEmailSent(ctx context.Context, id, recipient string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inspections SET email_sent = true, recipient = ?, sent_at = ?, updated_at = ? WHERE id = ?
	`, recipient, time.Now().UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark inspection %s as sent: %w", id, err)
	}
	return nil
}

// verifyAndCreateTables ensures the inspections table exists
func verifyAndCreateTables(db *sql.DB) error {
	ctx := context.Background()

	var tableExists int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_name = 'inspections'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check if inspections table exists: %w", err)
	}

	if tableExists == 0 {
		log.Info("Creating inspections table...")

		createTableSQL := `
			CREATE TABLE inspections (
				id VARCHAR(36) PRIMARY KEY,
				agent_name VARCHAR(255) NOT NULL DEFAULT '',
				insured_name VARCHAR(255) NOT NULL DEFAULT '',
				policy_number VARCHAR(64) NOT NULL DEFAULT '',
				inspection_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				vehicles_json LONGTEXT NOT NULL,
				pdf_generated BOOLEAN NOT NULL DEFAULT FALSE,
				email_sent BOOLEAN NOT NULL DEFAULT FALSE,
				recipient VARCHAR(255),
				sent_at TIMESTAMP NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("failed to create inspections table: %w", err)
		}

		log.Info("inspections table created successfully")
	} else {
		log.Info("inspections table already exists")
	}

	return nil
}
