package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/runesbridge/staking-pipeline/internal/models"
	"github.com/runesbridge/staking-pipeline/internal/parser"
)

func TestCSVParserParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	content := "id,type,wallet,token,note,date,amount\n" +
		"1,sell,bc1qwallet,RUNE,,2024-06-01 12:00:00,250\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rows, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "wallet", rows[0][models.ColumnWallet])
	assert.Equal(t, "bc1qwallet", rows[1][models.ColumnWallet])
	assert.Nil(t, rows[1][4])
	assert.Equal(t, "2024-06-01 12:00:00", rows[1][models.ColumnDate])
	assert.Equal(t, "250", rows[1][models.ColumnAmount])
}

func TestXLSXParserParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"id", "type", "wallet", "token", "note", "date", "amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1, "sell", "bc1qwallet", "RUNE", nil, 45460.5, 100}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2, "buy", "bc1qother", "RUNE", nil, "2024-08-01 00:00:00", "N/A"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "bc1qwallet", rows[1][models.ColumnWallet])
	assert.Nil(t, rows[1][4])
	assert.Equal(t, 45460.5, rows[1][models.ColumnDate])
	assert.Equal(t, float64(100), rows[1][models.ColumnAmount])
	assert.Equal(t, "2024-08-01 00:00:00", rows[2][models.ColumnDate])
	assert.Equal(t, "N/A", rows[2][models.ColumnAmount])
}

func TestParseFileUnsupportedFormat(t *testing.T) {
	_, err := parser.ParseFile("transactions.json")
	require.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}

func TestParseFileMissing(t *testing.T) {
	_, err := parser.ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
