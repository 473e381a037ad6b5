/*
 * Copyright 2025 Carver Automation Corporation.
 *
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

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// storedTimeLayout is fixed width so that text comparison in SQLite orders
// timestamps chronologically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

var nowUTC = func() time.Time { return time.Now().UTC() }

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))

			continue
		}

		b.WriteByte(query[i])
	}

	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// timeArg encodes a timestamp for the active dialect.
func timeArg(dialect Dialect, t time.Time) any {
	if dialect == DialectPostgres {
		return t.UTC()
	}

	return formatTime(t)
}

func nullableTimeArg(dialect Dialect, t *time.Time) any {
	if t == nil {
		return nil
	}

	return timeArg(dialect, *t)
}

// nullTime scans timestamps stored natively or as text.
type nullTime struct {
	Time  time.Time
	Valid bool
}

var parseLayouts = []string{
	storedTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

func (n *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false

		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true

		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("%w: %T", errUnsupportedTime, src)
	}
}

func (n *nullTime) parse(s string) error {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true

			return nil
		}
	}

	return fmt.Errorf("%w: %q", errUnsupportedTime, s)
}

func (n *nullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}

	t := n.Time

	return &t
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}

	return *f
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	s := ns.String

	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}

	f := nf.Float64

	return &f
}
