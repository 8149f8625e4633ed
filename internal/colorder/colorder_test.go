package colorder

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outOfOrderVariant struct {
	Field1 string `wire:"2,field@2"`
	Field2 string `wire:"0,field@0"`
	Field3 string `wire:"1,field@1"`
	hidden string
}

type duplicateOrderVariant struct {
	A string `wire:"0,a"`
	B string `wire:"0,b"`
}

func TestOrderOfSortsByDeclaredOrder(t *testing.T) {
	Reset()
	cols, err := OrderOf(&outOfOrderVariant{})
	require.NoError(t, err)
	assert.Equal(t, []string{"field@0", "field@1", "field@2"}, cols)
}

func TestOrderOfIsCachedAndIdempotent(t *testing.T) {
	Reset()
	v := &outOfOrderVariant{}
	first, err := OrderOf(v)
	require.NoError(t, err)
	second, err := OrderOf(v)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOrderOfDuplicateOrderIsSchemaError(t *testing.T) {
	Reset()
	_, err := OrderOf(&duplicateOrderVariant{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSchema))

	// second call returns the same cached error, not a re-scan panic.
	_, err2 := OrderOf(&duplicateOrderVariant{})
	require.Error(t, err2)
}

func TestOrderOfQuoteTargetRecord(t *testing.T) {
	Reset()
	cols, err := OrderOf(&model.QuoteTargetRecord{})
	require.NoError(t, err)
	assert.Equal(t, "exch_product_id", cols[0])
	assert.Equal(t, "offer5_volume", cols[len(cols)-1])
}
