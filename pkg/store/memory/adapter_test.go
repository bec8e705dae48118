package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nimburion/remotestore/pkg/store"
)

func TestAdapter_GetSetDelete(t *testing.T) {
	a := NewAdapter()
	ctx := context.Background()

	got, err := a.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v", got, err)
	}

	value := map[string]any{"n": 1}
	if err := a.Set(ctx, "a", value); err != nil {
		t.Fatal(err)
	}
	got, err = a.Get(ctx, "a")
	if err != nil || !reflect.DeepEqual(got, value) {
		t.Fatalf("Get(a) = %#v, %v", got, err)
	}

	if err := a.Set(ctx, "a", 2); err != nil {
		t.Fatal(err)
	}
	if got, _ := a.Get(ctx, "a"); got != 2 {
		t.Fatalf("Get(a) after overwrite = %#v", got)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}

	if err := a.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := a.Delete(ctx, "a"); err != nil {
		t.Fatalf("second Delete() = %v", err)
	}
	if got, _ := a.Get(ctx, "a"); got != nil {
		t.Fatalf("Get(a) after delete = %#v", got)
	}
}

func TestAdapter_EmptyKey(t *testing.T) {
	a := NewAdapter()
	if err := a.Set(context.Background(), "", 1); !errors.Is(err, store.ErrInvalidKey) {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestAdapter_ClosedIsUninitialized(t *testing.T) {
	a := NewAdapter()
	ctx := context.Background()
	_ = a.Set(ctx, "a", 1)

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Get(ctx, "a"); !errors.Is(err, store.ErrUninitialized) {
		t.Fatalf("Get() error = %v", err)
	}
	if err := a.Set(ctx, "a", 1); !errors.Is(err, store.ErrUninitialized) {
		t.Fatalf("Set() error = %v", err)
	}
	if err := a.Delete(ctx, "a"); !errors.Is(err, store.ErrUninitialized) {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := a.HealthCheck(ctx); !errors.Is(err, store.ErrUninitialized) {
		t.Fatalf("HealthCheck() error = %v", err)
	}
}

func TestAdapter_GetAsNormalizesNativeValues(t *testing.T) {
	a := NewAdapter()
	ctx := context.Background()
	_ = a.Set(ctx, "n", 7)

	got, ok, err := store.GetAs[float64](ctx, a, "n")
	if err != nil || !ok || got != 7 {
		t.Fatalf("GetAs() = %v, %v, %v", got, ok, err)
	}
}

func TestProperty_LastWriteWins(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	properties := gopter.NewProperties(params)

	properties.Property("get returns the last value set", prop.ForAll(
		func(key string, values []string) bool {
			a := NewAdapter()
			ctx := context.Background()
			for _, v := range values {
				if err := a.Set(ctx, key, v); err != nil {
					return false
				}
			}
			got, err := a.Get(ctx, key)
			if err != nil {
				return false
			}
			if len(values) == 0 {
				return got == nil
			}
			return got == values[len(values)-1] && a.Len() == 1
		},
		gen.Identifier(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
