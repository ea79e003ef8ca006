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

import "testing"

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("composer")
	if !ok || role != RoleComposer {
		t.Fatalf("ParseRole(composer) = %v, %v", role, ok)
	}
	role, ok = ParseRole("  Producer ")
	if !ok || role != RoleProducer {
		t.Fatalf("ParseRole with whitespace and case = %v, %v", role, ok)
	}
	if _, ok = ParseRole("roadie"); ok {
		t.Fatal("ParseRole(roadie) should not be ok")
	}
}

func TestRoleValueScan(t *testing.T) {
	v, err := RoleFeatured.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "featured" {
		t.Fatalf("Value = %v, want featured", v)
	}

	var r Role
	if err := r.Scan([]byte("lyricist")); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if r != RoleLyricist {
		t.Fatalf("Scan = %v, want lyricist", r)
	}
	if err := r.Scan("ghostwriter"); err == nil {
		t.Fatal("Scan of unknown role should fail")
	}

	if _, err := Role(99).Value(); err == nil {
		t.Fatal("Value of invalid role should fail")
	}
}

func TestRoleEnumContract(t *testing.T) {
	for _, role := range Roles() {
		if !role.IsValid() {
			t.Fatalf("role %d should be valid", role.Number())
		}
		if role.Name() == IllegalName {
			t.Fatalf("role %d has illegal name", role.Number())
		}
		if role.Desc() == IllegalDesc {
			t.Fatalf("role %d has illegal desc", role.Number())
		}
	}
	invalid := Role(IllegalValue)
	if invalid.IsValid() || invalid.String() != IllegalName {
		t.Fatal("illegal role should report the illegal name")
	}
}
