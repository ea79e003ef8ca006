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

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"rock", "indie"}
	v, err := list.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned StringList
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(scanned) != 2 || scanned[0] != "rock" || scanned[1] != "indie" {
		t.Fatalf("round trip = %v", scanned)
	}
}

func TestStringListNil(t *testing.T) {
	var list StringList
	v, err := list.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Fatalf("nil list should store NULL, got %v", v)
	}

	var scanned StringList
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if scanned != nil {
		t.Fatalf("Scan(nil) = %v, want nil", scanned)
	}
}

func TestStringListContains(t *testing.T) {
	list := StringList{"jazz", "fusion"}
	if !list.Contains("jazz") {
		t.Fatal("Contains(jazz) = false")
	}
	if list.Contains("metal") {
		t.Fatal("Contains(metal) = true")
	}
}
