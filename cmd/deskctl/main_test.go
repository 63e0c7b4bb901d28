package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DESK_DB_PATH", dbPath)
	t.Setenv("DESK_REQUEST_URL", "/api/method")

	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestDeskctl_DownloadFlow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath, "set-doc", "-name", "WPS-0001", "-docstatus", "0")
	require.NoError(t, err)

	out, err := runCmd(t, dbPath, "form", "-name", "WPS-0001")
	require.NoError(t, err)
	assert.Contains(t, out, `"buttons": []`)

	_, err = runCmd(t, dbPath, "set-doc", "-name", "WPS-0001", "-docstatus", "1")
	require.NoError(t, err)

	out, err = runCmd(t, dbPath, "-lang", "ar", "form", "-name", "WPS-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "تنزيل")

	out, err = runCmd(t, dbPath, "action", "-name", "WPS-0001")
	require.NoError(t, err)
	assert.Equal(t, "/api/method?cmd=teciza.teciza.doctype.wps.wps.get_wps_csv&docname=WPS-0001", strings.TrimSpace(out))
}

func TestDeskctl_Filters(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath, "set-default", "-parent", "hr@teciza.com", "-value", "Teciza Trading")
	require.NoError(t, err)

	out, err := runCmd(t, dbPath, "-today", "2024-03-15", "-user", "hr@teciza.com", "filters")
	require.NoError(t, err)

	var filters []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &filters))
	require.Len(t, filters, 6)
	assert.Equal(t, "Teciza Trading", filters[0]["default"])
	assert.Equal(t, "2024-02-15", filters[1]["default"])
	assert.Equal(t, "2024-03-15", filters[2]["default"])
}

func TestDeskctl_Usage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, dbPath, "explode")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, dbPath, "-today", "15/03/2024", "reports")
	assert.Error(t, err)
}

func TestDeskctl_GetDefault(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath, "set-default", "-value", "Teciza Holding")
	require.NoError(t, err)
	_, err = runCmd(t, dbPath, "set-default", "-parent", "hr@teciza.com", "-value", "Teciza Trading")
	require.NoError(t, err)

	out, err := runCmd(t, dbPath, "-user", "hr@teciza.com", "get-default")
	require.NoError(t, err)
	assert.Equal(t, "Teciza Trading", strings.TrimSpace(out))

	out, err = runCmd(t, dbPath, "get-default", "-key", "Company")
	require.NoError(t, err)
	assert.Equal(t, "Teciza Holding", strings.TrimSpace(out))
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDeskctl_Seed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")
	fixture := writeFixture(t, `
defaults:
  - key: Company
    value: Teciza Holding
documents:
  - doctype: WPS
    name: WPS/2024/001
    docstatus: 1
`)

	out, err := runCmd(t, dbPath, "seed", "-file", fixture)
	require.NoError(t, err)
	assert.JSONEq(t, `{"documents": 1, "defaults": 1}`, out)

	out, err = runCmd(t, dbPath, "action", "-name", "WPS/2024/001")
	require.NoError(t, err)
	assert.Equal(t,
		"/api/method?cmd=teciza.teciza.doctype.wps.wps.get_wps_csv&docname=WPS%2F2024%2F001",
		strings.TrimSpace(out))

	out, err = runCmd(t, dbPath, "get-default")
	require.NoError(t, err)
	assert.Equal(t, "Teciza Holding", strings.TrimSpace(out))
}

func TestDeskctl_SeedIsAtomic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath, "set-default", "-value", "Teciza Holding")
	require.NoError(t, err)

	fixture := writeFixture(t, `
defaults:
  - key: Company
    value: Overwritten
documents:
  - doctype: WPS
    name: WPS-0001
    docstatus: 1
  - doctype: WPS
    name: WPS-0002
    docstatus: 9
`)
	_, err = runCmd(t, dbPath, "seed", "-file", fixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documents[1]")

	out, err := runCmd(t, dbPath, "get-default")
	require.NoError(t, err)
	assert.Equal(t, "Teciza Holding", strings.TrimSpace(out))

	_, err = runCmd(t, dbPath, "form", "-name", "WPS-0001")
	assert.Error(t, err)
}

func TestDeskctl_SeedErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "desk.db")

	_, err := runCmd(t, dbPath, "seed")
	assert.Error(t, err)

	_, err = runCmd(t, dbPath, "seed", "-file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = runCmd(t, dbPath, "seed", "-file", writeFixture(t, "documents: {not: a list}\n"))
	assert.Error(t, err)
}
