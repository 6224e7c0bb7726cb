// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Attr is one column of output. Key is a gjson path into each result row.
type Attr struct {
	Key string
	// Include is false for attrs that only take part in filtering and sorting.
	Include bool
	// OutputKey names the column. It is also the key used by --filter and
	// --sort.
	OutputKey string
	// TransformSpec holds case (l, u) and length (n, -n) transforms.
	TransformSpec string
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies TransformSpec to string values. Other values pass
// through untouched.
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	// The last case letter wins, so a per-attr spec overrides a global one
	// prepended by SetGlobalTransformSpec.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same for lengths. Positive truncates, negative elides the middle.
	if match := lengthRe.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := l
		if abs < 0 {
			abs = -abs
		}
		if abs > 0 && len(result) > abs {
			if l < 0 {
				half := abs/2 - 1
				if half < 1 {
					half = 1
				}
				result = result[:half] + ".." + result[len(result)-half:]
			} else {
				result = result[:l]
			}
		}
	}

	return result
}

type AttrList []Attr

// String renders the list back into --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses an --attrs value: a comma separated list of
// key[:output[:transform]] specs. A leading ! hides the column; "*" carries a
// transform applied to every column.
func (a *AttrList) Set(value string) error {
	if value == "" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")

		attr := Attr{Include: true, Key: strings.TrimSpace(fields[0])}
		if attr.Key == "" {
			return fmt.Errorf("empty attribute in %q", value)
		}
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		attr.OutputKey = attr.Key
		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[1])
		} else if i := strings.LastIndex(attr.Key, "."); i >= 0 {
			attr.OutputKey = attr.Key[i+1:]
		}
		if len(fields) > 2 {
			attr.TransformSpec = strings.TrimSpace(fields[2])
		}

		// Respecifying an existing attr (a default or a repeat) updates it in
		// place so column order is stable.
		merged := false
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				merged = true
				break
			}
		}
		if !merged {
			*a = append(*a, attr)
		}
	}

	return nil
}

// SetGlobalTransformSpec prefixes every attr's transform with the one carried
// by "*", if any.
func (a *AttrList) SetGlobalTransformSpec() {
	spec := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return
	}

	for i := range *a {
		if (*a)[i].Key == "*" {
			continue
		}
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
}

// Included returns the attrs that are rendered as columns.
func (a AttrList) Included() AttrList {
	out := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

// Lookup finds the attr whose OutputKey is key.
func (a AttrList) Lookup(key string) (Attr, bool) {
	for _, attr := range a {
		if attr.OutputKey == key && attr.Key != "*" {
			return attr, true
		}
	}
	return Attr{}, false
}

func (a *AttrList) Type() string {
	return "list"
}
