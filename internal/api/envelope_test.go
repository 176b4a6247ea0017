package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func parseEnvelope(t *testing.T, body string) *envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return &env
}

func TestEnvelopeIsPage(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"code":200,"data":[],"total":0,"pageNum":1}`, true},
		{`{"code":200,"data":[],"total":0,"pageSize":10}`, true},
		{`{"code":200,"data":[],"total":3}`, false},
		{`{"code":200,"data":[],"pageNum":1,"pageSize":10}`, false},
		{`{"code":200,"data":{"total":3,"pageNum":1}}`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEnvelope(t, tt.body).isPage(), tt.body)
	}
}

func TestDecodePageShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		ids       []int64
		total     int64
		pageNum   int
		pageSize  int
		pageCount int
	}{
		{
			name:      "flattened",
			body:      `{"code":200,"data":[{"id":1},{"id":2}],"total":5,"pageNum":1,"pageSize":2,"totalPages":3}`,
			ids:       []int64{1, 2},
			total:     5,
			pageNum:   1,
			pageSize:  2,
			pageCount: 3,
		},
		{
			name:      "bare list",
			body:      `{"code":200,"data":[{"id":7}]}`,
			ids:       []int64{7},
			total:     1,
			pageNum:   1,
			pageSize:  1,
			pageCount: 1,
		},
		{
			name:      "nested records",
			body:      `{"code":200,"data":{"records":[{"id":4}],"total":21,"current":3,"size":10}}`,
			ids:       []int64{4},
			total:     21,
			pageNum:   3,
			pageSize:  10,
			pageCount: 3,
		},
		{
			name: "null data",
			body: `{"code":200,"data":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage[UserInfo](parseEnvelope(t, tt.body))
			require.NoError(t, err)

			var ids []int64
			for _, u := range page.List {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.pageNum, page.PageNum)
			assert.Equal(t, tt.pageSize, page.PageSize)
			assert.Equal(t, tt.pageCount, page.TotalPages)
		})
	}
}

func TestDecodePageRejectsScalars(t *testing.T) {
	_, err := decodePage[UserInfo](parseEnvelope(t, `{"code":200,"data":"nope"}`))
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Int64Range(0, 1_000_000).Draw(t, "total")
		size := rapid.IntRange(1, 500).Draw(t, "size")

		pages := totalPages(total, size)
		if int64(pages)*int64(size) < total {
			t.Fatalf("%d pages of %d cannot hold %d items", pages, size, total)
		}
		if pages > 0 && int64(pages-1)*int64(size) >= total {
			t.Fatalf("%d pages of %d is one too many for %d items", pages, size, total)
		}
	})
	assert.Equal(t, 0, totalPages(10, 0))
}
