// elogctl: a small operator CLI over the Control-Plane Hooks (C18) -
// list sources, push level updates, and reload a configuration snapshot
// against a running engine's JSON configuration file.
//
// USAGE:
//
//	elogctl -config app.json list [-include PATTERN] [-exclude PATTERN]
//	elogctl -config app.json set SOURCE.QNAME=LEVEL[+:MODE] [...]
//	elogctl -config app.json reload
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/elog"
)

func main() {
	fs := flashflags.New("elogctl", "control-plane CLI for an elog engine")
	configPath := fs.String("config", "", "path to the JSON configuration file to apply before acting")
	include := fs.String("include", "", "regular expression a source's qualified name must match for 'list'")
	exclude := fs.String("exclude", "", "regular expression a source's qualified name must not match for 'list'")
	reportLevel := fs.String("report-level", "", "also set the report channel's level for 'set'")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "elogctl: %v\n", err)
		os.Exit(2)
	}

	args := fs.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "elogctl: expected a command: list, set, reload")
		os.Exit(2)
	}

	engine, err := bootstrap(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elogctl: %v\n", err)
		os.Exit(1)
	}
	defer elog.Terminate()

	switch cmd := args[0]; cmd {
	case "list":
		runList(engine, *include, *exclude)
	case "set":
		runSet(engine, args[1:], *reportLevel)
	case "reload":
		runReload(engine, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "elogctl: unknown command %q\n", cmd)
		os.Exit(2)
	}
}

// bootstrap brings up an engine, optionally applying configPath's contents.
func bootstrap(configPath string) (*elog.Engine, error) {
	engine, err := elog.Initialize()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return engine, nil
	}
	cfg, err := elog.LoadConfigFromJSON(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", configPath, err)
	}
	if err := cfg.Apply(engine); err != nil {
		return nil, fmt.Errorf("applying %s: %w", configPath, err)
	}
	return engine, nil
}

func compileOrNil(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elogctl: invalid pattern %q: %v\n", pattern, err)
		os.Exit(2)
	}
	return re
}

func runList(engine *elog.Engine, include, exclude string) {
	rows := engine.ListSources(compileOrNil(include), compileOrNil(exclude))
	for _, r := range rows {
		fmt.Printf("%-40s %s\n", r.QName, r.Level)
	}
}

// runSet parses a list of "qname=level[+:mode]" arguments into LevelUpdate
// entries and applies them in the order given.
func runSet(engine *elog.Engine, assignments []string, reportLevelArg string) {
	updates := make([]elog.LevelUpdate, 0, len(assignments))
	for _, a := range assignments {
		qname, spec, ok := strings.Cut(a, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "elogctl: malformed assignment %q, expected QNAME=LEVEL\n", a)
			os.Exit(2)
		}
		level, mode, err := elog.ParsePropagatedLevel(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elogctl: %v\n", err)
			os.Exit(2)
		}
		updates = append(updates, elog.LevelUpdate{QName: qname, Level: level, Propagate: mode})
	}

	reportLevel := elog.Level(-1) // sentinel: leave report level unchanged
	if reportLevelArg != "" {
		lvl, err := elog.ParseLevel(reportLevelArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elogctl: %v\n", err)
			os.Exit(2)
		}
		reportLevel = lvl
	}

	result := engine.UpdateLevels(updates, reportLevel)
	if !result.OK {
		fmt.Fprintf(os.Stderr, "elogctl: update failed: %s\n", result.Message)
		os.Exit(1)
	}
}

func runReload(engine *elog.Engine, configPath string) {
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "elogctl: reload requires -config")
		os.Exit(2)
	}
	cfg, err := elog.LoadConfigFromJSON(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elogctl: %v\n", err)
		os.Exit(1)
	}
	result := engine.Reload(cfg)
	if !result.OK {
		fmt.Fprintf(os.Stderr, "elogctl: reload failed: %s\n", result.Message)
		os.Exit(1)
	}
}
