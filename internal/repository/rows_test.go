package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestOptional(t *testing.T) {
	v := 42

	got, err := optional(&v, nil, "value")
	if err != nil || got == nil || *got != 42 {
		t.Errorf("optional(found) = %v, %v", got, err)
	}

	got, err = optional(&v, fmt.Errorf("scan: %w", sql.ErrNoRows), "value")
	if got != nil || err != nil {
		t.Errorf("optional(no rows) = %v, %v, want nil, nil", got, err)
	}

	boom := errors.New("connection reset")
	got, err = optional(&v, boom, "value")
	if got != nil || !errors.Is(err, boom) {
		t.Errorf("optional(error) = %v, %v", got, err)
	}
}
