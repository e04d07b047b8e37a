package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanze/internal/core"
	"finanze/internal/export"
	"finanze/internal/log"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "id"}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:      "id",
		ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestReadCredentials_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))

	got, err := readCredentials(context.Background(), Config{ServiceAccountJSON: `{"from":"inline"}`, ServiceAccountFile: path}, log.Discard())
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"inline"}`, string(got))

	got, err = readCredentials(context.Background(), Config{ServiceAccountFile: path}, log.Discard())
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"file"}`, string(got))

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	got, err = readCredentials(context.Background(), Config{}, log.Discard())
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"file"}`, string(got))
}

func TestSheetNames(t *testing.T) {
	assert.Equal(t, DefaultSheetName, sheetName(Config{}, 2024))
	assert.Equal(t, "2024 Transazioni", sheetName(Config{YearPrefix: true}, 2024))
	assert.Equal(t, "2023 Spese", sheetName(Config{SheetName: "2023 Spese", YearPrefix: true}, 2024))
	assert.Equal(t, "Foglio1", quoteSheetName("Foglio1"))
	assert.Equal(t, "'2024 Transazioni'", quoteSheetName("2024 Transazioni"))
	assert.Equal(t, "'L''anno'", quoteSheetName("L'anno"))
}

type recordedCall struct {
	method string
	path   string
	query  string
	body   []byte
}

func newFakeSheetsAPI(t *testing.T) (*gsheet.Service, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, ":clear") {
			_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","clearedRange":"Transazioni!A1:D10"}`))
			return
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updatedRange":"Transazioni!A1:D3","updatedRows":3}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return svc, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestWriteTransactions_ClearsThenUpdates(t *testing.T) {
	svc, calls := newFakeSheetsAPI(t)
	c := newWithService(svc, "sheet-id", "Transazioni", log.Discard())

	ref, err := c.WriteTransactions(context.Background(), []core.Transaction{
		{ID: 1, Kind: core.Expense, Category: "Cibo", Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 2050}},
		{ID: 2, Kind: core.Income, Date: core.NewDate(2024, 1, 11), Amount: core.Money{Cents: 100000}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Transazioni!A1:D3", ref)

	got := calls()
	require.Len(t, got, 2)

	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Contains(t, got[0].path, "/spreadsheets/sheet-id/values/")
	assert.True(t, strings.HasSuffix(got[0].path, ":clear"), got[0].path)

	assert.Equal(t, http.MethodPut, got[1].method)
	assert.Contains(t, got[1].path, "Transazioni!A1:D3")
	assert.Contains(t, got[1].query, "valueInputOption=RAW")

	var vr struct {
		Values [][]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(got[1].body, &vr))
	require.Len(t, vr.Values, 3)
	assert.Equal(t, []any{"Data", "Tipo", "Categoria", "Importo"}, vr.Values[0])
	assert.Equal(t, []any{"2024-01-10", "spesa", "Cibo", 20.5}, vr.Values[1])
}

func TestWriteTransactions_EmptySetMakesNoCalls(t *testing.T) {
	svc, calls := newFakeSheetsAPI(t)
	c := newWithService(svc, "sheet-id", "Transazioni", log.Discard())

	_, err := c.WriteTransactions(context.Background(), nil)
	assert.ErrorIs(t, err, export.ErrEmptyExportSet)
	assert.Empty(t, calls())
}

func TestWriteTransactions_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "y", logger: log.Discard()}
	_, err := c.WriteTransactions(context.Background(), []core.Transaction{{ID: 1}})
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestClear_WritesHeaderOnly(t *testing.T) {
	svc, calls := newFakeSheetsAPI(t)
	c := newWithService(svc, "sheet-id", "Transazioni", log.Discard())

	_, err := c.Clear(context.Background())
	require.NoError(t, err)

	got := calls()
	require.Len(t, got, 2)
	assert.True(t, strings.HasSuffix(got[0].path, ":clear"), got[0].path)
	assert.Contains(t, got[1].path, "Transazioni!A1:D1")

	var vr struct {
		Values [][]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(got[1].body, &vr))
	assert.Equal(t, [][]any{{"Data", "Tipo", "Categoria", "Importo"}}, vr.Values)
}
