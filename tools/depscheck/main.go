package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const modulePath = "yew-art/server"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// layerRule limits which in-module packages a package may import.
type layerRule struct {
	pkg     string
	allowed []string
}

// The simulation core stays free of transport and rendering concerns.
var rules = []layerRule{
	{pkg: modulePath + "/internal/world", allowed: nil},
	{pkg: modulePath + "/internal/sim", allowed: []string{
		modulePath + "/internal/world",
		modulePath + "/internal/telemetry",
		modulePath + "/logging",
	}},
	{pkg: modulePath + "/internal/render", allowed: []string{
		modulePath + "/internal/world",
		modulePath + "/internal/sim",
	}},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	packages, err := decodePackages(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	violations := check(packages, rules)
	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func decodePackages(output []byte) ([]packageInfo, error) {
	decoder := json.NewDecoder(bytes.NewReader(output))
	var packages []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return packages, nil
			}
			return nil, err
		}
		packages = append(packages, pkg)
	}
}

func check(packages []packageInfo, rules []layerRule) []string {
	var violations []string
	for _, pkg := range packages {
		rule, ok := ruleFor(pkg.ImportPath, rules)
		if !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if !strings.HasPrefix(imp, modulePath) || within(imp, rule.pkg) || allowed(imp, rule.allowed) {
				continue
			}
			violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
		}
	}
	sort.Strings(violations)
	return violations
}

func ruleFor(importPath string, rules []layerRule) (layerRule, bool) {
	for _, rule := range rules {
		if within(importPath, rule.pkg) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func allowed(imp string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if within(imp, prefix) {
			return true
		}
	}
	return false
}

func within(importPath, pkg string) bool {
	return importPath == pkg || strings.HasPrefix(importPath, pkg+"/")
}
