// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/iconctl/internal/command"
	"github.com/staranto/iconctl/internal/config"
	mylog "github.com/staranto/iconctl/internal/log"
	"github.com/staranto/iconctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	// Short-circuit --version/-v.
	for _, a := range args[1:] {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		var err error
		if args, err = mangleArguments(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an argument set. An arg of the form @name is
// replaced by the list at <command>.<name> in the config file, inserted right
// after the command so explicit flags still win. Without an @name,
// <command>.defaults is used if it exists.
func mangleArguments(args []string) ([]string, error) {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2, len(args))
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help"), nil
		}
	}

	// A leading flag means there is no command to namespace a set under.
	if strings.HasPrefix(args[1], "-") {
		return args, nil
	}

	set := "defaults"
	explicit := false
	rest := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		if !explicit && strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			explicit = true
			continue
		}
		rest = append(rest, a)
	}

	key := args[1] + "." + set
	setArgs, err := config.GetStringSlice(key)
	if err != nil && explicit {
		return nil, fmt.Errorf("argument set %q not found in config: %w", "@"+set, err)
	}

	result := preamble
	for _, arg := range setArgs {
		result = append(result, strings.Fields(arg)...)
	}
	result = append(result, rest...)

	log.Debugf("set=%s, args=%v", set, result)
	return result, nil
}
