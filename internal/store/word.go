package store

import (
	"database/sql"
	"errors"

	"github.com/carmina/signado/internal/game"
	"github.com/google/uuid"
)

// WordEntry represents a fill-the-blank word stored in the database.
type WordEntry struct {
	ID       string
	Text     string
	Emoji    string
	Category string
}

// WordRepository provides CRUD operations for words. It implements
// game.WordSource, so a repository can back fill-the-blank rounds directly.
type WordRepository struct {
	db *sql.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// Create inserts a new word. A missing ID is generated.
func (r *WordRepository) Create(w *WordEntry) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Category == "" {
		w.Category = "general"
	}

	_, err := r.db.Exec(
		`INSERT INTO words (id, text, emoji, category) VALUES (?, ?, ?, ?)`,
		w.ID, w.Text, w.Emoji, w.Category,
	)
	return err
}

// GetByText retrieves a word by its text.
func (r *WordRepository) GetByText(text string) (*WordEntry, error) {
	w := &WordEntry{}
	err := r.db.QueryRow(
		`SELECT id, text, emoji, category FROM words WHERE text = ?`,
		text,
	).Scan(&w.ID, &w.Text, &w.Emoji, &w.Category)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// List retrieves all words ordered by text.
func (r *WordRepository) List() ([]*WordEntry, error) {
	return r.query(`SELECT id, text, emoji, category FROM words ORDER BY text`)
}

// ListByCategory retrieves the words in one category ordered by text.
func (r *WordRepository) ListByCategory(category string) ([]*WordEntry, error) {
	return r.query(
		`SELECT id, text, emoji, category FROM words WHERE category = ? ORDER BY text`,
		category,
	)
}

// Delete removes a word by ID.
func (r *WordRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM words WHERE id = ?`, id)
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

// Words implements game.WordSource over the whole table.
func (r *WordRepository) Words() ([]game.Word, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}
	words := make([]game.Word, len(entries))
	for i, e := range entries {
		words[i] = game.Word{Text: e.Text, Emoji: e.Emoji}
	}
	return words, nil
}

func (r *WordRepository) query(q string, args ...any) ([]*WordEntry, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []*WordEntry
	for rows.Next() {
		w := &WordEntry{}
		if err := rows.Scan(&w.ID, &w.Text, &w.Emoji, &w.Category); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
