// Package sitedatatest provides a fixture table set for tests.
package sitedatatest

import (
	_ "embed"
	"testing"

	"github.com/suncoastbuild/sitegen/internal/sitedata"
)

//go:embed site.yaml
var Raw []byte

// Tables parses the fixture, failing t on error.
func Tables(t testing.TB) *sitedata.Tables {
	t.Helper()
	tables, err := sitedata.Parse(Raw)
	if err != nil {
		t.Fatalf("parse fixture tables: %v", err)
	}
	return tables
}
