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

import "strings"

// splitStatements breaks a migration file into executable statements.
// Comments are dropped. A semicolon inside a string literal, a quoted
// identifier, a PostgreSQL dollar-quoted body or a SQLite trigger body does
// not end the statement.
func splitStatements(dialect Dialect, content string) []string {
	s := &statementSplitter{dialect: dialect, src: content}
	s.run()

	return s.out
}

type statementSplitter struct {
	dialect Dialect
	src     string
	pos     int
	buf     strings.Builder
	out     []string

	// open BEGIN/CASE blocks of a CREATE TRIGGER statement
	inTrigger bool
	depth     int
}

func (s *statementSplitter) run() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]

		switch {
		case strings.HasPrefix(s.src[s.pos:], "--"):
			s.skipLineComment()
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			s.skipBlockComment()
		case ch == '\'' || ch == '"' || ch == '`':
			s.copyQuoted(ch)
		case ch == '$' && s.dialect == DialectPostgres:
			if !s.copyDollarQuoted() {
				s.buf.WriteByte(ch)
				s.pos++
			}
		case isWordStart(ch):
			s.copyWord()
		case ch == ';' && s.depth == 0:
			s.flush()
			s.pos++
		default:
			s.buf.WriteByte(ch)
			s.pos++
		}
	}

	s.flush()
}

func (s *statementSplitter) flush() {
	if stmt := strings.TrimSpace(s.buf.String()); stmt != "" {
		s.out = append(s.out, stmt)
	}

	s.buf.Reset()
	s.inTrigger = false
	s.depth = 0
}

// skipLineComment leaves the terminating newline in place.
func (s *statementSplitter) skipLineComment() {
	if idx := strings.IndexByte(s.src[s.pos:], '\n'); idx >= 0 {
		s.pos += idx
		return
	}

	s.pos = len(s.src)
}

func (s *statementSplitter) skipBlockComment() {
	s.buf.WriteByte(' ')

	if idx := strings.Index(s.src[s.pos+2:], "*/"); idx >= 0 {
		s.pos += 2 + idx + 2
		return
	}

	s.pos = len(s.src)
}

// copyQuoted copies a quoted run verbatim. A doubled quote is an escape.
func (s *statementSplitter) copyQuoted(quote byte) {
	start := s.pos
	s.pos++

	for s.pos < len(s.src) {
		if s.src[s.pos] != quote {
			s.pos++
			continue
		}

		if s.pos+1 < len(s.src) && s.src[s.pos+1] == quote {
			s.pos += 2
			continue
		}

		s.pos++

		break
	}

	s.buf.WriteString(s.src[start:s.pos])
}

func (s *statementSplitter) copyDollarQuoted() bool {
	tag := dollarTag(s.src[s.pos:])
	if tag == "" {
		return false
	}

	stop := len(s.src)
	if idx := strings.Index(s.src[s.pos+len(tag):], tag); idx >= 0 {
		stop = s.pos + len(tag) + idx + len(tag)
	}

	s.buf.WriteString(s.src[s.pos:stop])
	s.pos = stop

	return true
}

func (s *statementSplitter) copyWord() {
	start := s.pos
	for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
		s.pos++
	}

	word := s.src[start:s.pos]
	s.buf.WriteString(word)

	if s.dialect == DialectSQLite {
		s.trackTriggerBody(strings.ToUpper(word))
	}
}

func (s *statementSplitter) trackTriggerBody(word string) {
	switch word {
	case "TRIGGER":
		stmt := strings.ToUpper(strings.TrimSpace(s.buf.String()))
		if s.depth == 0 && strings.HasPrefix(stmt, "CREATE") {
			s.inTrigger = true
		}
	case "BEGIN", "CASE":
		if s.inTrigger {
			s.depth++
		}
	case "END":
		if s.inTrigger && s.depth > 0 {
			s.depth--
		}
	}
}

// dollarTag returns the opening $$ or $name$ at the start of src.
// Positional parameters such as $1 are not tags.
func dollarTag(src string) string {
	for i := 1; i < len(src); i++ {
		ch := src[i]

		switch {
		case ch == '$':
			return src[:i+1]
		case i == 1 && !isWordStart(ch), !isWordChar(ch):
			return ""
		}
	}

	return ""
}

func isWordStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordChar(ch byte) bool {
	return isWordStart(ch) || (ch >= '0' && ch <= '9')
}
