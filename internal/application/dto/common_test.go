package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-siat/internal/application/dto"
)

func TestPageRequest_DefaultPage(t *testing.T) {
	cases := []struct {
		name       string
		in, quiero dto.PageRequest
	}{
		{"vacía", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"límite negativo", dto.PageRequest{Limit: -3, Offset: 5}, dto.PageRequest{Limit: 20, Offset: 5}},
		{"límite sobre el máximo", dto.PageRequest{Limit: 500}, dto.PageRequest{Limit: 100}},
		{"offset negativo", dto.PageRequest{Limit: 10, Offset: -1}, dto.PageRequest{Limit: 10}},
		{"sin cambios", dto.PageRequest{Limit: 100, Offset: 40}, dto.PageRequest{Limit: 100, Offset: 40}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.DefaultPage()
			assert.Equal(t, tc.quiero, p)
		})
	}
}
