package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeZones(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "json array",
			raw:  `["hood","roof"]`,
			want: []string{"hood", "roof"},
		},
		{
			name: "json string holding an encoded array",
			raw:  `"[\"hood\",\"mirrors\"]"`,
			want: []string{"hood", "mirrors"},
		},
		{
			name: "comma joined string",
			raw:  `"hood, roof ,trunk"`,
			want: []string{"hood", "roof", "trunk"},
		},
		{
			name: "legacy aliases rewritten",
			raw:  `["complete","capot","retros"]`,
			want: []string{"full_body", "hood", "mirrors"},
		},
		{
			name: "duplicates collapse preserving order",
			raw:  `["roof","hood","roof","capot"]`,
			want: []string{"roof", "hood"},
		},
		{
			name: "empty string",
			raw:  `""`,
			want: nil,
		},
		{
			name: "empty array",
			raw:  `[]`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeZones(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Nil(t, decodeZones(nil))
}

func TestZoneName(t *testing.T) {
	assert.Equal(t, "Capot", ZoneName("hood"))
	assert.Equal(t, "Pare-chocs avant", ZoneName("bumper_front"))

	// Unknown identifiers pass through so new zones still render.
	assert.Equal(t, "spoiler", ZoneName("spoiler"))
}
