package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "aeo", cmd.Use)
	for _, name := range []string{"compare", "normalize", "version"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("expected subcommand %q", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runRoot(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, true, strings.Contains(out, "aeo version"))
	assert.Equal(t, true, strings.Contains(out, "commit:"))
	assert.Equal(t, true, strings.Contains(out, "prompt: v1"))
}

func TestNormalizeCmd_Stdin(t *testing.T) {
	out, err := runRoot(t, "```json\n{\"result_text\":\"A wins\"}\n```", "normalize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	assert.Equal(t, "A wins", res["result"])
	assert.Equal(t, "structured", res["shape"])
	assert.Equal(t, nil, res["html"])
}

func TestNormalizeCmd_FileTextOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.html")
	if err := os.WriteFile(path, []byte("<p>Hello   world</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runRoot(t, "", "normalize", "--text", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, "Hello world\n", out)
}

func TestNormalizeCmd_MissingFile(t *testing.T) {
	_, err := runRoot(t, "", "normalize", filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func setCompareEnv(t *testing.T, baseURL, apiKey string) {
	t.Helper()
	for _, key := range []string{"LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS", "UPSTREAM_TIMEOUT", "CACHE_TTL", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("OPENROUTER_BASE_URL", baseURL)
	t.Setenv("OPENROUTER_API_KEY", apiKey)
}

func newFakeUpstream(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"id":      "gen-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "openai/gpt-4-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompareCmd_Text(t *testing.T) {
	srv := newFakeUpstream(t, `{"result_text":"Snippet A answers directly."}`)
	setCompareEnv(t, srv.URL+"/", "test-key")

	out, err := runRoot(t, "", "compare", "-a", "alpha", "-b", "beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, "Snippet A answers directly.\n", out)
}

func TestCompareCmd_JSONFromFiles(t *testing.T) {
	srv := newFakeUpstream(t, "<p>B is better</p>")
	setCompareEnv(t, srv.URL+"/", "test-key")

	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")
	os.WriteFile(aPath, []byte("alpha"), 0o644)
	os.WriteFile(bPath, []byte("beta"), 0o644)

	out, err := runRoot(t, "", "compare", "--a-file", aPath, "--b-file", bPath, "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	assert.Equal(t, "openrouter", res["provider"])
	assert.Equal(t, "openai/gpt-4-turbo", res["model"])
	assert.Equal(t, "B is better", res["result"])
	assert.Equal(t, "<p>B is better</p>", res["html"])
	assert.Equal(t, "html", res["shape"])
	assert.Equal(t, "<p>B is better</p>", res["raw"])
}

func TestCompareCmd_MissingSnippet(t *testing.T) {
	_, err := runRoot(t, "", "compare", "-a", "alpha")
	if err == nil {
		t.Fatal("expected error when a snippet is missing")
	}
	assert.Equal(t, "both snippets are required", err.Error())
}

func TestCompareCmd_MissingAPIKey(t *testing.T) {
	setCompareEnv(t, "http://127.0.0.1:1/", "")

	_, err := runRoot(t, "", "compare", "-a", "alpha", "-b", "beta")
	if err == nil {
		t.Fatal("expected error without API key")
	}
	assert.Equal(t, true, strings.Contains(err.Error(), "OPENROUTER_API_KEY"))
}
