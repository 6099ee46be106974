package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Parent is the parent of a File: either the root of the owner's tree or a
// reference to a folder. Stored as NULL for root, serialized as 0 for root.
type Parent struct {
	id string
}

var Root = Parent{}

func ParentFolder(id string) Parent {
	return Parent{id: id}
}

// ParseParent reads the query/form representation where "" and "0" mean root
func ParseParent(s string) Parent {
	if s == "" || s == "0" {
		return Root
	}
	return Parent{id: s}
}

func (p Parent) IsRoot() bool {
	return p.id == ""
}

func (p Parent) ID() string {
	return p.id
}

func (p Parent) String() string {
	if p.IsRoot() {
		return "root"
	}
	return p.id
}

func (p Parent) Value() (driver.Value, error) {
	if p.IsRoot() {
		return nil, nil
	}
	return p.id, nil
}

func (p *Parent) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Root
	case string:
		*p = ParseParent(v)
	case []byte:
		*p = ParseParent(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Parent", src)
	}
	return nil
}

func (p Parent) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(p.id)
}

// UnmarshalJSON accepts null, 0, "0", "" as root and any other string or
// number as a folder reference. Whether the reference is well formed is
// checked by the file service.
func (p *Parent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = Root
		return nil
	}

	var s string
	if len(b) > 0 && b[0] == '"' {
		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}
	} else {
		var n json.Number
		err := json.Unmarshal(b, &n)
		if err != nil {
			return fmt.Errorf("parentId must be a string or 0: %w", err)
		}
		s = n.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
			s = ""
		}
	}

	*p = ParseParent(s)
	return nil
}
