package domain

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "core export",
			in:   []string{"date", "ind", "rain", "ind", "temp", "ind", "wetb", "dewpt", "vappr", "rhum", "msl", "ind", "wdsp", "ind", "wddir"},
			want: []string{"date", "irain", "rain", "itemp", "temp", "iwetb", "wetb", "dewpt", "vappr", "rhum", "msl", "iwdsp", "wdsp", "iwddir", "wddir"},
		},
		{
			name: "trims and lower-cases",
			in:   []string{"\ufeff Date ", "WDSP"},
			want: []string{"date", "wdsp"},
		},
		{
			name: "trailing indicator keeps a suffix",
			in:   []string{"date", "wdsp", "ind", "ind"},
			want: []string{"date", "wdsp", "ind", "ind.1"},
		},
		{
			name: "empty cells named by position",
			in:   []string{"date", "", "wdsp"},
			want: []string{"date", "column1", "wdsp"},
		},
		{
			name: "plain duplicates",
			in:   []string{"date", "wdsp", "wdsp"},
			want: []string{"date", "wdsp", "wdsp.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestColumnSets(t *testing.T) {
	assert.True(t, IsCoreColumn("wdsp"))
	assert.False(t, IsCoreColumn("clamt"))
	assert.True(t, IsExtendedColumn("clamt"))
	assert.False(t, IsExtendedColumn("wdsp"))
	assert.Equal(t, "iwdsp", IndicatorColumn("wdsp"))
}

func TestFileError(t *testing.T) {
	err := error(&FileError{Path: "/data/mace.csv", Err: ErrHeaderNotFound})

	assert.True(t, errors.Is(err, ErrMalformedFile))
	assert.True(t, errors.Is(err, ErrHeaderNotFound))
	assert.False(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "/data/mace.csv")
	assert.Contains(t, err.Error(), "header row not found")

	var fe *FileError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "/data/mace.csv", fe.Path)
}
