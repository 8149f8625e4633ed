package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNameFormat(t *testing.T) {
	name := GenerateName("stg", "quote_table", "20250101")
	assert.Regexp(t, `^stg_quote_table_20250101_[0-9a-zA-Z]{6}$`, name)
}

func TestGenerateNameUniquePerCall(t *testing.T) {
	a := GenerateName("stg", "quote_table", "20250101")
	b := GenerateName("stg", "quote_table", "20250101")
	assert.NotEqual(t, a, b)
}
