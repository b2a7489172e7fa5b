package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/data/repos/testutil"
	"github.com/yungbote/cbl-backend/internal/domain/user"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*user.User{
		{
			ID:        uuid.New(),
			Email:     " UserRepo@Example.com ",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].Email != "userrepo@example.com" {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{"USERREPO@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists (missing): exists=%v err=%v", exists, err)
	}

	if err := repo.UpdateName(dbc, created[0].ID, "Ada", "Lovelace"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.UpdatePreferredTheme(dbc, created[0].ID, "dark"); err != nil {
		t.Fatalf("UpdatePreferredTheme: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after update: err=%v len=%d", err, len(rows))
	}
	if rows[0].FirstName != "Ada" || rows[0].PreferredTheme != "dark" {
		t.Fatalf("updates not applied: %+v", rows[0])
	}
}
