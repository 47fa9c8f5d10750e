package common_test

import (
	"testing"

	"github.com/streamatch/backend/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateMediaType(t *testing.T) {
	tests := []struct {
		t       string
		wantErr assert.ErrorAssertionFunc
	}{
		{"tv", assert.NoError},
		{"movie", assert.NoError},
		{"podcast", assert.Error},
		{"series", assert.Error},
		{"", assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.t, func(t *testing.T) {
			err := common.ValidateMediaType(tt.t)
			tt.wantErr(t, err)
		})
	}
}

func TestParseTitleID(t *testing.T) {
	tests := []struct {
		id      string
		want    int
		wantErr assert.ErrorAssertionFunc
	}{
		{"1396", 1396, assert.NoError},
		{"1", 1, assert.NoError},
		{"0", 0, assert.Error},
		{"-5", 0, assert.Error},
		{"abc", 0, assert.Error},
		{"", 0, assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := common.ParseTitleID(tt.id)
			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSelectedIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []int
		wantErr assert.ErrorAssertionFunc
	}{
		{"single", []int{1396}, assert.NoError},
		{"multiple", []int{1396, 1402}, assert.NoError},
		{"empty", []int{}, assert.Error},
		{"nil", nil, assert.Error},
		{"non positive", []int{1396, 0}, assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := common.ValidateSelectedIDs(tt.ids)
			tt.wantErr(t, err)
		})
	}
}
