package stdcursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/stephenafamo/fakedb"
	"github.com/stephenafamo/rowcursor"
)

type User struct {
	ID   int64
	Name string
}

func createDB(tb testing.TB, table string) *sql.DB {
	tb.Helper()
	db, err := sql.Open("test", "stdcursor")
	if err != nil {
		tb.Fatalf("Error opening testdb %v", err)
	}

	exec(tb, db, fmt.Sprintf("CREATE|%s|id=int64,name=string", table))
	tb.Cleanup(func() {
		exec(tb, db, fmt.Sprintf("DROP|%s", table))
		db.Close()
	})

	return db
}

func exec(tb testing.TB, db *sql.DB, query string, args ...any) {
	tb.Helper()
	if _, err := db.ExecContext(context.Background(), query, args...); err != nil {
		tb.Fatalf("Exec of %q: %v", query, err)
	}
}

func insert(tb testing.TB, db *sql.DB, table string, users ...User) {
	tb.Helper()
	for _, u := range users {
		exec(tb, db, fmt.Sprintf("INSERT|%s|id=?,name=?", table), u.ID, u.Name)
	}
}

func schema(tb testing.TB) *rowcursor.Registry {
	tb.Helper()
	r := rowcursor.NewRegistry()
	if err := rowcursor.DefineStruct[User](r, "user", nil); err != nil {
		tb.Fatal(err)
	}

	return r
}

func tableName(t *testing.T) string {
	return strings.ReplaceAll(t.Name(), "/", "_")
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	table := tableName(t)
	db := createDB(t, table)
	insert(t, db, table, User{1, "alice"}, User{2, "bob"})

	users, err := All(ctx, db, schema(t), rowcursor.StructLoader[User]("user"),
		fmt.Sprintf("SELECT|%s|id,name|", table))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]User{{1, "alice"}, {2, "bob"}}, users); diff != "" {
		t.Fatalf("diff: %s", diff)
	}
}

func TestOne(t *testing.T) {
	ctx := context.Background()
	table := tableName(t)
	db := createDB(t, table)
	query := fmt.Sprintf("SELECT|%s|id,name|", table)
	loader := rowcursor.StructLoader[User]("user")

	if _, err := One(ctx, db, schema(t), loader, query); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	insert(t, db, table, User{7, "carol"}, User{8, "dave"})

	u, err := One(ctx, db, schema(t), loader, query)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(User{7, "carol"}, u); diff != "" {
		t.Fatalf("diff: %s", diff)
	}
}

func TestCursorRecords(t *testing.T) {
	ctx := context.Background()
	table := tableName(t)
	db := createDB(t, table)
	insert(t, db, table, User{1, "alice"})

	c, err := Cursor(ctx, db, schema(t), rowcursor.RecordLoader("user"),
		fmt.Sprintf("SELECT|%s|id,name|", table))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	rec, err := c.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]any{int64(1), "alice"}, rec); diff != "" {
		t.Fatalf("diff: %s", diff)
	}

	if _, err := c.Next(ctx); err != rowcursor.Done { //nolint:errorlint
		t.Fatalf("expected Done, got %v", err)
	}
}

func TestQueryError(t *testing.T) {
	ctx := context.Background()
	db := createDB(t, tableName(t))

	_, err := All(ctx, db, schema(t), rowcursor.StructLoader[User]("user"), "SELECT|missing_table|id|")
	if err == nil {
		t.Fatal("expected an error for a missing table")
	}
}
