package csvutil

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderBatchSizes(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("sku,name,description,price,active\n")
	for i := 0; i < 25000; i++ {
		fmt.Fprintf(&sb, "SKU-%d,Item %d,,9.99,true\n", i, i)
	}

	dec, err := NewDecoder(strings.NewReader(sb.String()), 10000)
	require.NoError(t, err)

	var sizes []int
	for {
		batch, err := dec.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(batch))
	}

	assert.Equal(t, []int{10000, 10000, 5000}, sizes)
}

func TestDecoderFieldNormalization(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,description,price,active",
		"  ABC-1  ,  Widget  ,  A widget  ,19.99,yes",
		"abc-2,,, ,maybe",
		"abc-3,   ,desc,not-a-number,OFF",
	}, "\n")

	dec, err := NewDecoder(strings.NewReader(input), 100)
	require.NoError(t, err)

	batch, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, batch, 3)

	r1 := batch[0]
	assert.Equal(t, "ABC-1", r1.Sku)
	require.NotNil(t, r1.Name)
	assert.Equal(t, "Widget", *r1.Name)
	require.NotNil(t, r1.Description)
	assert.Equal(t, "A widget", *r1.Description)
	require.NotNil(t, r1.Price)
	assert.Equal(t, 19.99, *r1.Price)
	require.NotNil(t, r1.Active)
	assert.True(t, *r1.Active)

	r2 := batch[1]
	assert.Nil(t, r2.Name)
	assert.Nil(t, r2.Description)
	assert.Nil(t, r2.Price)
	assert.Nil(t, r2.Active, "unknown token degrades to absent")

	r3 := batch[2]
	assert.Nil(t, r3.Name, "whitespace-only name is absent")
	assert.Nil(t, r3.Price, "unparsable price is absent")
	require.NotNil(t, r3.Active)
	assert.False(t, *r3.Active)
}

func TestDecoderActiveVocabulary(t *testing.T) {
	truthy := []string{"1", "true", "yes", "y", "on", "TRUE", "Yes", " ON "}
	falsy := []string{"0", "false", "no", "n", "off", "FALSE", "No", " OFF "}
	absent := []string{"", "2", "enabled", "oui"}

	for _, tok := range truthy {
		v := decodeActive(t, tok)
		require.NotNil(t, v, "token %q", tok)
		assert.True(t, *v, "token %q", tok)
	}
	for _, tok := range falsy {
		v := decodeActive(t, tok)
		require.NotNil(t, v, "token %q", tok)
		assert.False(t, *v, "token %q", tok)
	}
	for _, tok := range absent {
		assert.Nil(t, decodeActive(t, tok), "token %q", tok)
	}
}

func decodeActive(t *testing.T, token string) *bool {
	t.Helper()
	input := "sku,active\nabc-1,\"" + token + "\"\n"
	dec, err := NewDecoder(strings.NewReader(input), 10)
	require.NoError(t, err)
	batch, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, batch, 1)
	return batch[0].Active
}

func TestDecoderDropsBlankSkuRows(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,description,price,active",
		"abc-1,First,,1.00,true",
		"   ,Second,,2.00,true",
		"abc-3,Third,,3.00,true",
	}, "\n")

	dec, err := NewDecoder(strings.NewReader(input), 100)
	require.NoError(t, err)

	batch, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "abc-1", batch[0].Sku)
	assert.Equal(t, "abc-3", batch[1].Sku)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderColumnOrderIrrelevant(t *testing.T) {
	input := "price,active,sku,extra\n5.50,no,ABC-9,ignored\n"

	dec, err := NewDecoder(strings.NewReader(input), 10)
	require.NoError(t, err)

	batch, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "ABC-9", batch[0].Sku)
	require.NotNil(t, batch[0].Price)
	assert.Equal(t, 5.50, *batch[0].Price)
	assert.Nil(t, batch[0].Name, "missing column means absent")
}

func TestDecoderMissingSkuColumn(t *testing.T) {
	input := "name,price\nWidget,1.00\n"

	dec, err := NewDecoder(strings.NewReader(input), 10)
	require.NoError(t, err)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err, "every row lacks a sku, so all are dropped")
}

func TestDecoderHeaderOnly(t *testing.T) {
	dec, err := NewDecoder(strings.NewReader("sku,name,description,price,active\n"), 10)
	require.NoError(t, err)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderEmptyFile(t *testing.T) {
	dec, err := NewDecoder(strings.NewReader(""), 10)
	require.NoError(t, err)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderStructuralError(t *testing.T) {
	input := "sku,name\nabc-1,\"unterminated\n"

	dec, err := NewDecoder(strings.NewReader(input), 10)
	require.NoError(t, err)

	_, err = dec.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestDecoderRejectsNonPositiveChunkSize(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("sku\n"), 0)
	assert.Error(t, err)
}

func TestCountRows(t *testing.T) {
	input := "sku,name\nabc-1,First\nabc-2,Second\n"
	n, err := CountRows(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCountRowsEmptyFile(t *testing.T) {
	n, err := CountRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCountRowsRejectsInconsistentRecords(t *testing.T) {
	input := "sku,name\nabc-1,First,extra,fields\n"
	_, err := CountRows(strings.NewReader(input))
	assert.Error(t, err)
}
