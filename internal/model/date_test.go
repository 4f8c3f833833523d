package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2026-03-01", want: "2026-03-01"},
		{name: "timestamp truncates", input: "2026-03-01T15:04:05Z", want: "2026-03-01"},
		{name: "whitespace tolerated", input: " 2026-03-01 ", want: "2026-03-01"},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	date := NewDate(2026, 3, 1)

	data, err := json.Marshal(date)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-01"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-01T10:30:00Z"`), &decoded))
	assert.Equal(t, "2026-03-01", decoded.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.True(t, decoded.IsZero())
}

func TestTransactionPatchApply(t *testing.T) {
	txn := &Transaction{
		Description: "Lunch",
		Type:        TypeExpense,
	}

	desc := "Dinner"
	patch := TransactionPatch{Description: &desc}
	patch.Apply(txn)

	assert.Equal(t, "Dinner", txn.Description)
	// Untouched fields keep their values.
	assert.Equal(t, TypeExpense, txn.Type)
}

func TestCategoryKeyIsCaseInsensitive(t *testing.T) {
	a := Category{Name: "Alimentación", Type: TypeExpense}
	b := Category{Name: "ALIMENTACIÓN", Type: TypeExpense}
	c := Category{Name: "Alimentación", Type: TypeIncome}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRecordTypeValid(t *testing.T) {
	assert.True(t, TypeExpense.Valid())
	assert.True(t, TypeIncome.Valid())
	assert.False(t, RecordType("transfer").Valid())
	assert.False(t, RecordType("").Valid())
}
