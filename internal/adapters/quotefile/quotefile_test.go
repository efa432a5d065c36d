package quotefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

func TestMarshalPretty_TwoSpaceIndent(t *testing.T) {
	data, err := MarshalPretty([]domain.Quote{{Text: "a", Category: "b"}})
	require.NoError(t, err)

	assert.Equal(t, "[\n  {\n    \"text\": \"a\",\n    \"category\": \"b\"\n  }\n]", string(data))
}

func TestMarshalPretty_Empty(t *testing.T) {
	data, err := MarshalPretty(nil)
	require.NoError(t, err)

	assert.Equal(t, "[]", string(data))
}

func TestUnmarshal_PreservesOrder(t *testing.T) {
	quotes, err := Unmarshal([]byte(`[{"text":"x","category":"1"},{"text":"y","category":"2"}]`))
	require.NoError(t, err)

	assert.Equal(t, []domain.Quote{{Text: "x", Category: "1"}, {Text: "y", Category: "2"}}, quotes)
}

func TestUnmarshal_Malformed(t *testing.T) {
	_, err := Unmarshal([]byte(`{"text":"x"`))
	assert.Error(t, err)
}

func TestMarshalEnvelope(t *testing.T) {
	data, err := MarshalEnvelope([]domain.Quote{{Text: "t", Category: "c"}})
	require.NoError(t, err)

	assert.JSONEq(t, `{"quotes":[{"text":"t","category":"c"}]}`, string(data))
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{"bare array", `[{"text":"a","category":"b"}, 5]`, 2, false},
		{"wrapped object", `{"quotes":[{"text":"a","category":"b"}]}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"leading whitespace", "\n  [1]", 1, false},
		{"object without quotes", `{"items":[]}`, 0, true},
		{"quotes not an array", `{"quotes":"nope"}`, 0, true},
		{"scalar", `42`, 0, true},
		{"blank", `   `, 0, true},
		{"broken json", `[{"text":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseImport([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				assert.Contains(t, err.Error(), "invalid JSON structure")
				return
			}

			require.NoError(t, err)
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestParseImport_FeedsImportBatch(t *testing.T) {
	items, err := ParseImport([]byte(`[{"text":"A","category":"X"},{"text":5,"category":"X"},{"category":"Y"}]`))
	require.NoError(t, err)

	store := domain.NewQuoteStore()
	n, err := store.ImportBatch(items)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, 4, store.Len())
}
