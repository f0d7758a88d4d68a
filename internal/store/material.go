package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Material categories.
const (
	CategoryAlphabet = "alphabet"
	CategoryNumber   = "number"
	CategoryWords    = "words"
)

// Material represents one learning card: how to sign a class, with an
// optional reference image and grouping subcategory.
type Material struct {
	ID          string
	Category    string
	Class       string
	Instruction string
	ImagePath   string
	Subcategory string
}

// MaterialRepository provides CRUD operations for learning materials.
type MaterialRepository struct {
	db *sql.DB
}

// Materials returns the learning materials repository for this store.
func (s *Store) Materials() *MaterialRepository {
	return &MaterialRepository{db: s.db}
}

// Create inserts a new learning material. A missing ID is generated.
func (r *MaterialRepository) Create(m *Material) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	_, err := r.db.Exec(
		`INSERT INTO learning_materials (id, category, class, instruction, image_path, subcategory)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Category, m.Class, m.Instruction, m.ImagePath, m.Subcategory,
	)
	return err
}

// GetByID retrieves a learning material by its ID.
func (r *MaterialRepository) GetByID(id string) (*Material, error) {
	m := &Material{}
	err := r.db.QueryRow(
		`SELECT id, category, class, instruction, image_path, subcategory
		 FROM learning_materials WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.Category, &m.Class, &m.Instruction, &m.ImagePath, &m.Subcategory)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByCategory retrieves the materials in one category, ordered by
// subcategory then class to match the learn pages' grouping.
func (r *MaterialRepository) ListByCategory(category string) ([]*Material, error) {
	switch category {
	case CategoryAlphabet, CategoryNumber, CategoryWords:
	default:
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, category)
	}

	rows, err := r.db.Query(
		`SELECT id, category, class, instruction, image_path, subcategory
		 FROM learning_materials WHERE category = ?
		 ORDER BY subcategory, class`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*Material
	for rows.Next() {
		m := &Material{}
		if err := rows.Scan(&m.ID, &m.Category, &m.Class, &m.Instruction, &m.ImagePath, &m.Subcategory); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// Delete removes a learning material by ID.
func (r *MaterialRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM learning_materials WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
