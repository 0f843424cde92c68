package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// TestMain loads .env if available, mirroring main.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

// getBinaryPath returns the path to a built pts_radar binary, skipping when absent.
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}
	binaryPath := filepath.Join("..", "..", "bin", "pts_radar")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}
	return binaryPath
}

const testFeed = `{"items":[
	{"Tdnet":{"company_code":"72030","company_name":"トヨタ自動車","title":"決算短信","document_url":"https://example.com/a.pdf","pubdate":"2024-05-10 15:00:00"}},
	{"Tdnet":{"company_code":"99840","company_name":"ソフトバンクG","title":"","document_url":"https://example.com/b.pdf","pubdate":"2024-05-09 15:00:00"}}
]}`

func testRankingPage(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="gray-sticky-table"><table><tbody>`)
	for i := 0; i+1 < len(rows); i += 2 {
		fmt.Fprintf(&b, `<tr><th><a>%s</a> <span>銘柄</span></th><td>1,000</td><td>1,100</td><td>%s</td><td>5,000</td></tr>`, rows[i], rows[i+1])
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}

// newUpstream serves a two-page ranking and the disclosure feed.
func newUpstream(t *testing.T) *httptest.Server {
	pages := map[string]string{
		"1": testRankingPage("7203", "+20.00%", "9984", "+10.00%"),
		"2": testRankingPage("8306", "+1.00%"),
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rank":
			_, _ = w.Write([]byte(pages[r.URL.Query().Get("page")]))
		case "/feed":
			_, _ = w.Write([]byte(testFeed))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// writeConfig writes a config file pointing at upstream and selects it for newApp.
func writeConfig(t *testing.T, upstream *httptest.Server) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`ranking:
  url_template: %s/rank?page={page}
disclosure:
  feed_url: %s/feed
http:
  timeout: 5s
log:
  level: error
`, upstream.URL, upstream.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })
}
