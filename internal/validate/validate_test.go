package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type item struct {
	Name  string          `validate:"required,max=5"`
	Price decimal.Decimal `validate:"gt=0"`
	Min   int             `validate:"gte=0"`
}

func TestStructMessages(t *testing.T) {
	err := Struct(item{Name: "", Price: decimal.Zero, Min: -1})
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T %v", err, err)
	}
	want := "Name is required.; Price must be greater than 0.; Min must be at least 0."
	if err.Error() != want {
		t.Fatalf("got %q\nwant %q", err.Error(), want)
	}

	if err := Struct(item{Name: "toolong", Price: decimal.NewFromFloat(1.5)}); err == nil || err.Error() != "Name must be at most 5 characters." {
		t.Fatalf("unexpected max error: %v", err)
	}
	if err := Struct(item{Name: "ok", Price: decimal.RequireFromString("0.01")}); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}
}

func TestParsers(t *testing.T) {
	if id, ok := ID(" 7 "); !ok || id != 7 {
		t.Fatalf("ID(7) = %d %v", id, ok)
	}
	for _, s := range []string{"", "0", "-3", "x"} {
		if _, ok := ID(s); ok {
			t.Errorf("ID(%q) accepted", s)
		}
	}
	if id, ok := OptionalID(""); !ok || id != 0 {
		t.Fatalf("OptionalID empty = %d %v", id, ok)
	}
	if _, ok := OptionalID("abc"); ok {
		t.Fatal("OptionalID accepted garbage")
	}
	if n, ok := Int(""); !ok || n != nil {
		t.Fatal("empty Int should be absent")
	}
	if _, ok := Int("1.5"); ok {
		t.Fatal("Int accepted a fraction")
	}
	if d, ok := Decimal("12.50"); !ok || !d.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("Decimal = %v %v", d, ok)
	}
	if _, ok := Decimal("twelve"); ok {
		t.Fatal("Decimal accepted garbage")
	}
}

func TestPage(t *testing.T) {
	cases := []struct {
		page, size string
		wp, ws     int
		ok         bool
	}{
		{"", "", 1, 20, true},
		{"3", "5", 3, 5, true},
		{"0", "-1", 0, -1, true},
		{"x", "", 0, 0, false},
		{"1", "y", 0, 0, false},
	}
	for _, c := range cases {
		p, s, ok := Page(c.page, c.size, 20)
		if p != c.wp || s != c.ws || ok != c.ok {
			t.Errorf("Page(%q,%q) = %d,%d,%v", c.page, c.size, p, s, ok)
		}
	}
}
