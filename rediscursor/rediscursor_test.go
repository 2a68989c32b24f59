package rediscursor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stephenafamo/rowcursor"
)

type Reading struct {
	Sensor string
	Value  float64
}

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func add(t *testing.T, client *redis.Client, key string, values map[string]any) {
	t.Helper()
	if err := client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: key,
		Values: values,
	}).Err(); err != nil {
		t.Fatal(err)
	}
}

func registry(t *testing.T) *rowcursor.Registry {
	t.Helper()
	r := rowcursor.NewRegistry()
	if err := rowcursor.DefineStruct[Reading](r, "reading", nil); err != nil {
		t.Fatal(err)
	}

	return r
}

func TestCursor(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	add(t, client, "readings", map[string]any{"sensor": "a", "value": "1.5"})
	add(t, client, "readings", map[string]any{"value": "2", "sensor": "b", "extra": "x"})

	c, err := Cursor(registry(t), client, "readings", rowcursor.StructLoader[Reading]("reading"))
	if err != nil {
		t.Fatal(err)
	}

	readings, err := rowcursor.All(ctx, c)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Reading{{"a", 1.5}, {"b", 2}}
	if diff := cmp.Diff(expected, readings); diff != "" {
		t.Fatalf("diff: %s", diff)
	}
}

func TestCursorUnknownModel(t *testing.T) {
	_, client := newClient(t)

	if _, err := Cursor(rowcursor.NewRegistry(), client, "readings", rowcursor.StructLoader[Reading]("reading")); err == nil {
		t.Fatal("expected an error for an unknown model")
	}
}

func TestStreamMissingFields(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	add(t, client, "readings", map[string]any{"sensor": "a"})

	s := New(client, "readings", "sensor", "value")
	defer s.Close()

	v, err := s.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(rowcursor.Record{"a", nil}, v); diff != "" {
		t.Fatalf("diff: %s", diff)
	}

	if _, err := s.Next(ctx); err != rowcursor.Done { //nolint:errorlint
		t.Fatalf("expected Done, got %v", err)
	}
}

type Sample struct {
	Sensor string
	Value  float64
	Unit   string
}

func TestCursorMissingMiddleField(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	add(t, client, "samples", map[string]any{"sensor": "a", "unit": "C"})
	add(t, client, "samples", map[string]any{"sensor": "b", "value": "3", "unit": "F"})

	r := rowcursor.NewRegistry()
	if err := rowcursor.DefineStruct[Sample](r, "sample", nil); err != nil {
		t.Fatal(err)
	}

	c, err := Cursor(r, client, "samples", rowcursor.StructLoader[Sample]("sample"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, err = c.Next(ctx)
	var loadErr *rowcursor.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected a *LoadError, got %v", err)
	}

	if diff := cmp.Diff([]string{"convert", "value"}, loadErr.Meta()); diff != "" {
		t.Fatalf("diff: %s", diff)
	}

	// the bad entry does not end the cursor
	s, err := c.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Sample{"b", 3, "F"}, s); diff != "" {
		t.Fatalf("diff: %s", diff)
	}
}

func TestStreamEmpty(t *testing.T) {
	_, client := newClient(t)

	s := New(client, "nothing", "sensor")
	if _, err := s.Next(context.Background()); err != rowcursor.Done { //nolint:errorlint
		t.Fatalf("expected Done, got %v", err)
	}
}

func TestStreamServerError(t *testing.T) {
	mr, client := newClient(t)
	mr.SetError("LOADING server is loading")

	s := New(client, "readings", "sensor")
	if _, err := s.Next(context.Background()); err == nil || err == rowcursor.Done { //nolint:errorlint
		t.Fatalf("expected a server error, got %v", err)
	}
}

func TestNextID(t *testing.T) {
	cases := map[string]string{
		"1526919030474-0":                    "1526919030474-1",
		"1526919030474-55":                   "1526919030474-56",
		"1526919030474-18446744073709551615": "1526919030475-0",
	}

	for id, expected := range cases {
		got, err := nextID(id)
		if err != nil {
			t.Fatal(err)
		}
		if got != expected {
			t.Fatalf("expected %s, got %s", expected, got)
		}
	}

	if _, err := nextID("bad"); err == nil {
		t.Fatal("expected an error for a malformed id")
	}

	if _, err := nextID("18446744073709551615-18446744073709551615"); !errors.Is(err, errLastID) {
		t.Fatalf("expected errLastID, got %v", err)
	}
}
