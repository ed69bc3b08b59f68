package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		csv := "category_key,pieces,weight_kg\nauto_lead_acid,10,120.5\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)
		assert.NotNil(t, parser)
	})

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		csv := "\xEF\xBB\xBFcategory_key,pieces\nauto_lead_acid,10\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		assert.Empty(t, parser.MissingColumns("category_key", "pieces"))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("BOM only is empty", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("\xEF\xBB\xBF"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects non UTF-8 content", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("categor\xFFe,pieces\n"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("sniffs semicolon delimiter", func(t *testing.T) {
		csv := "category_key;pieces;weight_kg\nauto_lead_acid;10;120.5\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		rows, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "auto_lead_acid", rows[0].Get("category_key"))
		assert.Equal(t, "10", rows[0].Get("pieces"))
	})

	t.Run("forced delimiter wins over sniffing", func(t *testing.T) {
		csv := "category_key;pieces\nindustrial_nimh;4\n"
		parser, err := NewParser(strings.NewReader(csv), WithDelimiter(';'))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		assert.Empty(t, parser.MissingColumns("category_key"))
	})
}

func TestParser_ParseHeader(t *testing.T) {
	t.Run("trims header names", func(t *testing.T) {
		csv := " category_key , pieces \nauto_lead_acid,10\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		assert.Empty(t, parser.MissingColumns("category_key", "pieces"))
	})

	t.Run("reports missing columns", func(t *testing.T) {
		csv := "category_key,pieces\nauto_lead_acid,10\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		missing := parser.MissingColumns("category_key", "weight_kg", "value_ron")
		assert.Equal(t, []string{"weight_kg", "value_ron"}, missing)
	})

	t.Run("header only file parses with no rows", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("category_key,pieces\n"))
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())
		rows, err := parser.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestParser_ReadAll(t *testing.T) {
	t.Run("rows carry file line numbers", func(t *testing.T) {
		csv := "category_key,pieces\nauto_lead_acid,10\nmoto_lead_acid,3\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, 3, rows[1].Line)
	})

	t.Run("skips blank lines but keeps numbering", func(t *testing.T) {
		csv := "category_key,pieces\nauto_lead_acid,10\n,\nmoto_lead_acid,3\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 4, rows[1].Line)
	})

	t.Run("pads short records", func(t *testing.T) {
		csv := "category_key,pieces,weight_kg\nauto_lead_acid,10\n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Get("weight_kg"))
	})

	t.Run("trims cell whitespace", func(t *testing.T) {
		csv := "category_key,pieces\n auto_lead_acid , 10 \n"
		parser, err := NewParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "auto_lead_acid", rows[0].Get("category_key"))
		assert.Equal(t, "10", rows[0].Get("pieces"))
	})
}
