package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}

	err := errors.New(`ERROR: duplicate key value violates unique constraint "categories_pkey" (SQLSTATE 23505)`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected generic duplicate key match")
	}
	if !IsUniqueViolation(err, "categories_pkey") {
		t.Fatal("expected constraint name match")
	}
	if IsUniqueViolation(err, "products_pkey") {
		t.Fatal("unexpected match for different constraint")
	}

	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: categories.name"), "") {
		t.Fatal("expected sqlite unique violation match")
	}

	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error should not match")
	}
}
