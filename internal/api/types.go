package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Flex is an enum value the backend sends either as a number or as a string
// ("1" or 1, "TODO" or 0 depending on the endpoint version).
type Flex string

// FlexInt returns a Flex holding n.
func FlexInt(n int) Flex {
	return Flex(strconv.Itoa(n))
}

// Int returns the numeric value and whether the value is numeric.
func (f Flex) Int() (int, bool) {
	n, err := strconv.Atoi(string(f))
	return n, err == nil
}

// String implements fmt.Stringer.
func (f Flex) String() string {
	return string(f)
}

// MarshalJSON writes numeric values as JSON numbers and everything else as
// strings. The empty value is null.
func (f Flex) MarshalJSON() ([]byte, error) {
	if f == "" {
		return []byte("null"), nil
	}
	if n, ok := f.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(f))
}

// UnmarshalJSON accepts a number, a string or null.
func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex value must be a number or string: %w", err)
	}
	*f = Flex(n.String())
	return nil
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus int

const (
	ProjectNotStarted ProjectStatus = 1
	ProjectInProgress ProjectStatus = 2
	ProjectCompleted  ProjectStatus = 3
	ProjectSuspended  ProjectStatus = 4
)

var projectStatusNames = map[ProjectStatus]string{
	ProjectNotStarted: "not started",
	ProjectInProgress: "in progress",
	ProjectCompleted:  "completed",
	ProjectSuspended:  "suspended",
}

func (s ProjectStatus) String() string {
	if name, ok := projectStatusNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// EncodeValues sends the numeric status in query strings; go-querystring
// would otherwise use String.
func (s ProjectStatus) EncodeValues(key string, v *url.Values) error {
	v.Set(key, strconv.Itoa(int(s)))
	return nil
}

// PageQuery is the paging part of list queries.
type PageQuery struct {
	PageNum  int `url:"pageNum,omitempty" json:"pageNum,omitempty"`
	PageSize int `url:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// DateRange restricts statistics to [StartDate, EndDate] (yyyy-mm-dd).
type DateRange struct {
	StartDate string `url:"startDate,omitempty"`
	EndDate   string `url:"endDate,omitempty"`
}
