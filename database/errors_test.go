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

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlErrorMySQLNumbers(t *testing.T) {
	cases := []struct {
		number uint16
		want   SQLError
	}{
		{1062, DuplicateKeyErr},
		{1054, NoColumnErr},
		{1060, ExistColumnErr},
		{1452, ForeignKeyViolationErr},
		{1048, NotNullViolationErr},
		{3819, CheckConstraintViolationErr},
	}
	for _, tc := range cases {
		err := &mysql.MySQLError{Number: tc.number, Message: "boom"}
		is, class := IsSqlError(err)
		assert.True(t, is, "number %d", tc.number)
		assert.Equal(t, tc.want, class, "number %d", tc.number)
	}
}

func TestIsSqlErrorWrappedMySQL(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &mysql.MySQLError{Number: 1062})
	is, class := IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, class)
}

func TestIsSqlErrorMessageMatching(t *testing.T) {
	cases := []struct {
		err  error
		want SQLError
	}{
		{errors.New("UNIQUE constraint failed: artist_roles.song_id"), DuplicateKeyErr},
		{errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), DuplicateKeyErr},
		{errors.New("no such table: songs"), NoTableErr},
		{errors.New("no such column: bpm"), NoColumnErr},
		{errors.New("FOREIGN KEY constraint failed"), ForeignKeyViolationErr},
		{errors.New("NOT NULL constraint failed: songs.title"), NotNullViolationErr},
	}
	for _, tc := range cases {
		is, class := IsSqlError(tc.err)
		assert.True(t, is, "%v", tc.err)
		assert.Equal(t, tc.want, class, "%v", tc.err)
	}
}

func TestIsSqlErrorUnrecognized(t *testing.T) {
	is, class := IsSqlError(errors.New("connection refused"))
	assert.False(t, is)
	assert.Equal(t, UnknownErr, class)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: artists.spotify_id")))
	assert.False(t, IsDuplicateKey(errors.New("no such table: artists")))
	assert.False(t, IsDuplicateKey(errors.New("something else")))
}
