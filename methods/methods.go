// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package methods

import (
	"slices"
	"strings"
)

// Default is the known-methods reference set used when no other set is
// configured.
var Default = New(
	"ACL",
	"BIND",
	"CHECKOUT",
	"CONNECT",
	"COPY",
	"DELETE",
	"GET",
	"HEAD",
	"LINK",
	"LOCK",
	"M-SEARCH",
	"MERGE",
	"MKACTIVITY",
	"MKCALENDAR",
	"MKCOL",
	"MOVE",
	"NOTIFY",
	"OPTIONS",
	"PATCH",
	"POST",
	"PROPFIND",
	"PROPPATCH",
	"PURGE",
	"PUT",
	"QUERY",
	"REBIND",
	"REPORT",
	"SEARCH",
	"SOURCE",
	"SUBSCRIBE",
	"TRACE",
	"UNBIND",
	"UNLINK",
	"UNLOCK",
	"UNSUBSCRIBE",
)

// Set is an immutable set of canonical (uppercase) HTTP method tokens.
// The zero value is an empty set.
type Set struct {
	members map[string]struct{}
}

// New builds a Set from the given tokens. Tokens are upper-cased and empty
// tokens are ignored.
func New(methods ...string) Set {
	members := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if m == "" {
			continue
		}
		members[strings.ToUpper(m)] = struct{}{}
	}

	return Set{members: members}
}

// Union returns a new Set holding the members of s and the given tokens.
func (s Set) Union(methods ...string) Set {
	return New(append(s.Methods(), methods...)...)
}

// Contains reports whether method, compared case-insensitively, is a member.
func (s Set) Contains(method string) bool {
	if method == "" {
		return false
	}
	_, ok := s.members[strings.ToUpper(method)]

	return ok
}

// IsOverridable reports whether candidate is a usable method override hint:
// a non-empty string naming a member of the set. Any other value, including
// nil, slices and maps, is not overridable.
func (s Set) IsOverridable(candidate any) bool {
	_, ok := s.Canonical(candidate)
	return ok
}

// Canonical returns the uppercase form of candidate when it is overridable.
func (s Set) Canonical(candidate any) (string, bool) {
	token, ok := candidate.(string)
	if !ok || token == "" {
		return "", false
	}

	upper := strings.ToUpper(token)
	if _, ok = s.members[upper]; !ok {
		return "", false
	}

	return upper, true
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.members)
}

// Methods returns the members in sorted order.
func (s Set) Methods() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	slices.Sort(out)

	return out
}
