package postgres

import (
	"context"
	"testing"

	squirrel "github.com/Masterminds/squirrel"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

func newMenuConfigRepoWithMock(t *testing.T) (*MenuConfigRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &MenuConfigRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestMenuConfigRepository_Upsert(t *testing.T) {
	repo, mock := newMenuConfigRepoWithMock(t)

	updatedBy := "super-1"
	entry := domain.MenuConfigEntry{
		OwnerRole:  domain.RoleSuper,
		TargetRole: domain.RoleResident,
		MenuKey:    "gas",
		IsEnabled:  true,
		UpdatedBy:  &updatedBy,
	}

	mock.ExpectExec(`INSERT INTO menu_configurations`).
		WithArgs("SUPER", "RESIDENT", "gas", true, &updatedBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMenuConfigRepository_ListByTargetRole(t *testing.T) {
	repo, mock := newMenuConfigRepoWithMock(t)

	updatedBy := "main-1"
	rows := pgxmock.NewRows([]string{"owner_role", "target_role", "menu_key", "is_enabled", "updated_by"}).
		AddRow("SUPER", "RESIDENT", "dashboard", true, nil).
		AddRow("MAIN", "RESIDENT", "gas", false, &updatedBy)

	mock.ExpectQuery(`SELECT owner_role, target_role, menu_key, is_enabled, updated_by FROM menu_configurations`).
		WithArgs("RESIDENT").
		WillReturnRows(rows)

	entries, err := repo.ListByTargetRole(context.Background(), domain.RoleResident)
	if err != nil {
		t.Fatalf("ListByTargetRole returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].OwnerRole != domain.RoleSuper || !entries[0].IsEnabled {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].UpdatedBy == nil || *entries[1].UpdatedBy != "main-1" {
		t.Fatalf("expected updated_by decoded, got %+v", entries[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
