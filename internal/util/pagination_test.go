package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/quickcart/internal/domain"
)

func TestWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		skip       string
		limit      string
		wantOffset int
		wantSize   int
		wantErr    bool
	}{
		{name: "defaults", wantOffset: 0, wantSize: DefaultLimit},
		{name: "explicit", skip: "20", limit: "5", wantOffset: 20, wantSize: 5},
		{name: "max limit", limit: "100", wantSize: 100},
		{name: "limit too big", limit: "101", wantErr: true},
		{name: "zero limit", limit: "0", wantErr: true},
		{name: "negative skip", skip: "-1", wantErr: true},
		{name: "garbage", skip: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, size, err := Window(tt.skip, tt.limit)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "0", "-3", "x1", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}
