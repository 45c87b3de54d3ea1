package lspr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		participant string
		want        string
	}{
		{"Maria da Silva", "relatorio_Maria_da_Silva.pdf"},
		{"João Araújo", "relatorio_Joao_Araujo.pdf"},
		{"João", "relatorio_Joao.pdf"},
		{"  Ana  ", "relatorio_Ana.pdf"},
		{"Ana/../../etc", "relatorio_Ana....etc.pdf"},
		{"Zoë O'Brien-Smith", "relatorio_Zoe_OBrien-Smith.pdf"},
		{"李雷", "relatorio.pdf"},
		{"", "relatorio.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.participant, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFileName(tt.participant))
		})
	}
}
