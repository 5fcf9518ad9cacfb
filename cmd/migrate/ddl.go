package main

import (
	"fmt"
	"strings"
)

// databasePath is a parsed projects/P/instances/I/databases/D name.
type databasePath struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
}

func parseDatabasePath(s string) (databasePath, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" {
		return databasePath{}, fmt.Errorf("want projects/P/instances/I/databases/D, got %q", s)
	}
	for _, p := range []string{parts[1], parts[3], parts[5]} {
		if p == "" {
			return databasePath{}, fmt.Errorf("empty segment in %q", s)
		}
	}
	return databasePath{ProjectID: parts[1], InstanceID: parts[3], DatabaseID: parts[5]}, nil
}

func (d databasePath) Project() string  { return "projects/" + d.ProjectID }
func (d databasePath) Instance() string { return d.Project() + "/instances/" + d.InstanceID }
func (d databasePath) String() string   { return d.Instance() + "/databases/" + d.DatabaseID }

// splitDDLStatements drops comment lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
