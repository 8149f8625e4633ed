package csvstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderYieldsRowsByColumnName(t *testing.T) {
	body := "mqOffset,level,side,price\n1,1,0,100.5\n2,1,1,101.5\n"
	r, err := Open(strings.NewReader(body), ',', false, nil)
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", first.Fields["mqOffset"])
	assert.Equal(t, "100.5", first.Fields["price"])

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "101.5", second.Fields["price"])

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderToleratesMalformedRowsWithoutFailing(t *testing.T) {
	// LazyQuotes + FieldsPerRecord=-1 tolerate ragged rows, and with
	// LazyQuotes an unterminated quote is not an error either: it
	// absorbs the rest of the file into one field, so the reader
	// yields rows and does not fail.
	body := "a,b\n1,2\n\"unterminated,3\n4,5\n"
	r, err := Open(strings.NewReader(body), ',', false, nil)
	require.NoError(t, err)

	rows, err := ReadAll(r)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rows), 1)
}

func TestOpenFailsOnEmptyFile(t *testing.T) {
	_, err := Open(strings.NewReader(""), ',', false, nil)
	require.Error(t, err)
}

func TestOpenPipeDelimited(t *testing.T) {
	body := "a|b\n1|2\n"
	r, err := Open(strings.NewReader(body), '|', false, nil)
	require.NoError(t, err)
	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", row.Fields["b"])
}
