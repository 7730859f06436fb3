package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Busco apartamento en Chapinero", "Busco apartamento en Chapinero"},
		{"tags", "<b>Hola</b> <script>alert(1)</script>mundo", "Hola alert(1)mundo"},
		{"encoded tags", "&lt;img src=x onerror=alert(1)&gt;casa", "casa"},
		{"entities", "Sala &amp; comedor", "Sala & comedor"},
		{"spaces", "  tres\t\thabitaciones   y  patio ", "tres habitaciones y patio"},
		{"lines kept", "linea uno\r\n  linea dos", "linea uno\nlinea dos"},
		{"blank lines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"angle brackets around numbers", "entre <200 y 300> millones", "entre <200 y 300> millones"},
		{"comparison operators", "precio < 300 y > 200", "precio < 300 y > 200"},
		{"encoded brackets around numbers", "entre &lt;200 y 300&gt;", "entre <200 y 300>"},
		{"self closing and comments", "uno<br/>dos<!-- nota -->tres", "unodostres"},
		{"closing tag only", "casa</div> grande", "casa grande"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTextPtr(t *testing.T) {
	assert.Nil(t, TextPtr(nil))

	in := " <i>nota</i> "
	assert.Equal(t, "nota", *TextPtr(&in))
}
