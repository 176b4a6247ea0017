package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the backend's response wrapper. Page results carry the list in
// data plus page fields at the top level.
type envelope struct {
	Code       *int            `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Total      *int64          `json:"total"`
	PageNum    *int            `json:"pageNum"`
	PageSize   *int            `json:"pageSize"`
	TotalPages *int            `json:"totalPages"`
}

// isPage reports whether the envelope is a page result: total plus pageNum
// or pageSize.
func (e *envelope) isPage() bool {
	return e.Total != nil && (e.PageNum != nil || e.PageSize != nil)
}

// ok reports whether the envelope carries the success code.
func (e *envelope) ok() bool {
	return e.Code != nil && *e.Code == CodeOK
}

// Page is one page of a paginated backend listing.
type Page[T any] struct {
	List       []T   `json:"list" yaml:"list"`
	Total      int64 `json:"total" yaml:"total"`
	PageNum    int   `json:"pageNum" yaml:"pageNum"`
	PageSize   int   `json:"pageSize" yaml:"pageSize"`
	TotalPages int   `json:"totalPages" yaml:"totalPages"`
}

// nestedPage is the shape some endpoints return inside data instead of the
// flattened page envelope.
type nestedPage[T any] struct {
	List       []T   `json:"list"`
	Records    []T   `json:"records"`
	Total      int64 `json:"total"`
	PageNum    int   `json:"pageNum"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	Pages      int   `json:"pages"`
	Current    int   `json:"current"`
	Size       int   `json:"size"`
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeData unmarshals the data field into out. A null or absent data
// leaves out untouched.
func decodeData(env *envelope, out interface{}) error {
	if out == nil || isNull(env.Data) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// decodePage converts a response into a Page. Flattened page envelopes are
// the normal case; a bare list or a nested page object inside data are also
// accepted.
func decodePage[T any](env *envelope) (*Page[T], error) {
	page := &Page[T]{}

	if env.isPage() {
		if err := decodeData(env, &page.List); err != nil {
			return nil, err
		}
		page.Total = *env.Total
		if env.PageNum != nil {
			page.PageNum = *env.PageNum
		}
		if env.PageSize != nil {
			page.PageSize = *env.PageSize
		}
		if env.TotalPages != nil {
			page.TotalPages = *env.TotalPages
		} else {
			page.TotalPages = totalPages(page.Total, page.PageSize)
		}
		return page, nil
	}

	trimmed := bytes.TrimSpace(env.Data)
	switch {
	case isNull(trimmed):
		return page, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &page.List); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		page.Total = int64(len(page.List))
		page.PageNum = 1
		page.PageSize = len(page.List)
		page.TotalPages = 1
		return page, nil
	}

	var nested nestedPage[T]
	if err := json.Unmarshal(trimmed, &nested); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	page.List = nested.List
	if page.List == nil {
		page.List = nested.Records
	}
	page.Total = nested.Total
	page.PageNum = firstNonZero(nested.PageNum, nested.Current)
	page.PageSize = firstNonZero(nested.PageSize, nested.Size)
	page.TotalPages = firstNonZero(nested.TotalPages, nested.Pages)
	if page.TotalPages == 0 {
		page.TotalPages = totalPages(page.Total, page.PageSize)
	}
	return page, nil
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
