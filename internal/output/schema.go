// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// DumpSchema prints the attribute names of a row type, taken from its json
// tags, for use with --attrs, --filter and --sort.
func DumpSchema(w io.Writer, typ reflect.Type) {
	names := SchemaNames(typ)

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w,
		`Attributes that are directly available to the --attrs, --filter and
--sort flags.`)
}

// SchemaNames returns the sorted json names of typ's exported fields.
func SchemaNames(typ reflect.Type) []string {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	var names []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tag = strings.Split(tag, ",")[0]
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
