package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm sentinel", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "ux_stickers_tenant_code" (SQLSTATE 23505)`), true},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry 'MAR-AAAA2222' for key 'ux_stickers_tenant_code'"), true},
		{"sqlite", errors.New("UNIQUE constraint failed: stickers.code"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKeyErr(tt.err))
		})
	}
}
