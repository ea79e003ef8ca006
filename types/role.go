/*
 * Copyright 2025 the Song-Graph Authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Role is the credit an artist holds on a song. It is stored as its string
// name so the artist_roles table stays readable across dialects.
type Role int

const (
	RolePerformer Role = iota
	RoleComposer
	RoleLyricist
	RoleProducer
	RoleFeatured
)

var roleNames = map[Role]string{
	RolePerformer: "performer",
	RoleComposer:  "composer",
	RoleLyricist:  "lyricist",
	RoleProducer:  "producer",
	RoleFeatured:  "featured",
}

var roleDescs = map[Role]string{
	RolePerformer: "primary performing artist",
	RoleComposer:  "wrote the music",
	RoleLyricist:  "wrote the lyrics",
	RoleProducer:  "produced the recording",
	RoleFeatured:  "featured guest artist",
}

// ParseRole maps a string name back to its Role. Unknown names report ok=false.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s {
			return r, true
		}
	}
	return Role(IllegalValue), false
}

// Roles returns all valid roles in declaration order.
func Roles() []Role {
	return []Role{RolePerformer, RoleComposer, RoleLyricist, RoleProducer, RoleFeatured}
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) Number() int { return int(r) }

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return IllegalName
}

func (r Role) Name() string { return r.String() }

func (r Role) Desc() string {
	if desc, ok := roleDescs[r]; ok {
		return desc
	}
	return IllegalDesc
}

// Value implements driver.Valuer so a Role column stores its string name.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid role: %d", int(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner for string and []byte role columns.
func (r *Role) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*r = Role(IllegalValue)
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("unknown role: %q", s)
	}
	*r = parsed
	return nil
}

// MarshalJSON encodes the role as its string name.
func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a role from its string name.
func (r *Role) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("unknown role: %q", s)
	}
	*r = parsed
	return nil
}
