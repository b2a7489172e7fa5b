package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/data/repos/testutil"
	"github.com/yungbote/cbl-backend/internal/domain/errs"
	"github.com/yungbote/cbl-backend/internal/domain/user"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
)

func TestGormTxRunner(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	runner := NewGormTxRunner(db)
	users := NewUserRepo(db, testutil.Logger(t))

	committed := "tx-commit-" + uuid.NewString()[:8] + "@example.com"
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		if dbc.Tx == nil {
			t.Fatalf("callback ran without a transaction")
		}
		_, err := users.Create(dbc, []*user.User{{Email: committed, Password: "pw", FirstName: "A", LastName: "B"}})
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if ok, _ := users.EmailExists(dbctx.Context{Ctx: ctx}, committed); !ok {
		t.Fatalf("committed user missing")
	}

	rolledBack := "tx-rollback-" + uuid.NewString()[:8] + "@example.com"
	boom := errors.New("boom")
	err = runner.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := users.Create(dbc, []*user.User{{Email: rolledBack, Password: "pw", FirstName: "A", LastName: "B"}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err=%v want boom", err)
	}
	if ok, _ := users.EmailExists(dbctx.Context{Ctx: ctx}, rolledBack); ok {
		t.Fatalf("write survived rollback")
	}

	if err := (*gormTxRunner)(nil).InTx(ctx, func(dbctx.Context) error { return nil }); !errs.IsCode(err, errs.CodeInternal) {
		t.Fatalf("nil runner err=%v", err)
	}
}
