package recipes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateStoresEmptyFieldsAsNull(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	recipe := Recipe{ID: "abc123XYZ_", Name: "Nasi Goreng", Image: "https://storage.googleapis.com/b/public/recipes/images/1-picture.png", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO recipes").
		WithArgs(
			recipe.ID,
			sql.NullString{String: "Nasi Goreng", Valid: true},
			sql.NullString{},
			sql.NullString{},
			sql.NullString{String: recipe.Image, Valid: true},
			now,
			now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), recipe); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM recipes WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSearchEscapesPattern(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "ingredient", "category", "image", "created_at", "updated_at"}).
		AddRow("r1", "100% Sambal", nil, "sauce", nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM recipes WHERE name ILIKE").
		WithArgs(`%100\%%`).
		WillReturnRows(rows)

	found, err := repo.SearchByName(context.Background(), "100%")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(found) != 1 || found[0].Name != "100% Sambal" || found[0].Ingredient != "" || found[0].Category != "sauce" {
		t.Fatalf("unexpected rows: %+v", found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateAndDeleteMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE recipes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM recipes").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), Recipe{ID: "gone"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
