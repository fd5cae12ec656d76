package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "ux_facturas_cuf"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.Equal(t, "ux_facturas_cuf", violatedConstraint(fmt.Errorf("insert: %w", dup)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
	assert.Empty(t, violatedConstraint(errors.New("otro")))
}

func TestLikeEscape(t *testing.T) {
	assert.Equal(t, "juan", likeEscape("juan"))
	assert.Equal(t, `100\%`, likeEscape("100%"))
	assert.Equal(t, `a\_b`, likeEscape("a_b"))
	assert.Equal(t, `c:\\x`, likeEscape(`c:\x`))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	if p := nullIfEmpty("x"); assert.NotNil(t, p) {
		assert.Equal(t, "x", *p)
		assert.Equal(t, "x", derefStr(p))
	}
	assert.Equal(t, "", derefStr(nil))
}

func TestHistoryWhere(t *testing.T) {
	t.Run("solo NIT", func(t *testing.T) {
		where, args := historyWhere(entity.InvoiceFilter{NIT: "123456789"})
		assert.Equal(t, "nit = $1", where)
		assert.Equal(t, []any{"123456789"}, args)
	})

	t.Run("todos los filtros numeran en orden", func(t *testing.T) {
		st := entity.StatusAccepted
		where, args := historyWhere(entity.InvoiceFilter{
			NIT:             "123456789",
			Status:          &st,
			ClientDocNumber: "4567890",
		})
		assert.Equal(t, "nit = $1 AND estado = $2 AND numero_documento = $3", where)
		assert.Equal(t, []any{"123456789", 2, "4567890"}, args)
	})
}
