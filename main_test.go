package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/hnflat/internal/api"
	"github.com/fragmede/hnflat/internal/condense"
	"github.com/fragmede/hnflat/internal/config"
	"github.com/fragmede/hnflat/internal/discussion"
)

const testPage = `<html><body><table>
<tr class="athing submission" id="42"><td><span class="titleline"><a href="https://example.com/post">Show HN: Flat</a></span></td></tr>
<tr class="athing comtr" id="1"><td><table><tr>
  <td class="ind" indent="0"></td>
  <td class="default"><span class="comhead"><a class="hnuser">alice</a></span>
  <div class="comment"><div class="commtext c00">Nice work.</div></div></td>
</tr></table></td></tr>
<tr class="athing comtr" id="2"><td><table><tr>
  <td class="ind" indent="1"></td>
  <td class="default"><span class="comhead"><a class="hnuser">bob</a></span>
  <div class="comment"><div class="commtext c73">Spam.</div></div></td>
</tr></table></td></tr>
<tr class="athing comtr" id="3"><td><table><tr>
  <td class="ind" indent="0"></td>
  <td class="default"><span class="comhead"><a class="hnuser">carol</a></span>
  <div class="comment"><div class="commtext c00">Thanks <i>for</i> sharing.</div></div></td>
</tr></table></td></tr>
</table></body></html>`

const testMarkdown = "- @alice: Nice work.\n- @carol: Thanks for sharing.\n"

type testServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		switch r.URL.Path {
		case "/item":
			switch r.URL.Query().Get("id") {
			case "42", "43":
				_, _ = w.Write([]byte(testPage))
				return
			}
		case "/v0/item/42.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "type": "story", "title": "Via API", "kids": []int{1}})
			return
		case "/v0/item/1.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "type": "comment", "by": "dora", "text": "From JSON."})
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *testServer) opts() []api.Option {
	return []api.Option{api.WithWebURL(s.URL), api.WithAPIURL(s.URL + "/v0")}
}

func execute(t *testing.T, s *testServer, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(context.Background(), fs, &stdout, &stderr, s.opts()...)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// Expectation: --stdout should print the discussion with front matter.
func Test_Root_Stdout_Success(t *testing.T) {
	s := newTestServer(t)

	out, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "---\n"))
	require.Contains(t, out, "Show HN: Flat")
	require.True(t, strings.HasSuffix(out, "---\n"+testMarkdown))
	require.NotContains(t, out, "bob")
}

// Expectation: Without a destination the result should go to hn.<id>.md.
func Test_Root_DefaultFile_Success(t *testing.T) {
	s := newTestServer(t)
	fs := afero.NewMemMapFs()

	out, _, err := execute(t, s, fs, s.URL+"/item?id=42", "--no-frontmatter")
	require.NoError(t, err)
	require.Empty(t, out)

	b, err := afero.ReadFile(fs, "hn.42.md")
	require.NoError(t, err)
	require.Equal(t, testMarkdown, string(b))
}

// Expectation: Several discussions should each get a file in the output directory.
func Test_Root_OutDir_Success(t *testing.T) {
	s := newTestServer(t)
	fs := afero.NewMemMapFs()

	_, _, err := execute(t, s, fs, "42", "43", "--out-dir", "posts", "--no-frontmatter")
	require.NoError(t, err)

	for _, name := range []string{"posts/hn.42.md", "posts/hn.43.md"} {
		b, err := afero.ReadFile(fs, name)
		require.NoError(t, err, name)
		require.Equal(t, testMarkdown, string(b))
	}
}

// Expectation: One output file for two discussions should be refused before fetching.
func Test_Root_OutputAmbiguous_Error(t *testing.T) {
	s := newTestServer(t)

	_, _, err := execute(t, s, afero.NewMemMapFs(), "42", "43", "-o", "out.md")
	require.ErrorIs(t, err, discussion.ErrAmbiguousOutput)
	require.Zero(t, s.hits.Load())
}

// Expectation: Destinations should be mutually exclusive.
func Test_Root_ExclusiveFlags_Error(t *testing.T) {
	s := newTestServer(t)

	_, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "-o", "out.md")
	require.Error(t, err)
}

// Expectation: A ratio outside (0, 1] should be rejected.
func Test_Root_InvalidRatio_Error(t *testing.T) {
	s := newTestServer(t)

	_, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--condense", "1.5")
	require.ErrorIs(t, err, condense.ErrInvalidRatio)
}

// Expectation: Condensing should drop the least valuable comment.
func Test_Root_Condense_Success(t *testing.T) {
	s := newTestServer(t)

	out, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--no-frontmatter", "--condense", "0.6")
	require.NoError(t, err)
	require.Equal(t, "- @carol: Thanks for sharing.\n", out)
}

// Expectation: The API source should render the JSON thread.
func Test_Root_SourceAPI_Success(t *testing.T) {
	s := newTestServer(t)

	out, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--source", "api")
	require.NoError(t, err)
	require.Contains(t, out, "Via API")
	require.True(t, strings.HasSuffix(out, "- @dora: From JSON.\n"))
}

// Expectation: Unknown sources and missing arguments should fail.
func Test_Root_BadInput_Error(t *testing.T) {
	s := newTestServer(t)

	_, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--source", "rss")
	require.Error(t, err)

	_, _, err = execute(t, s, afero.NewMemMapFs())
	require.Error(t, err)

	_, _, err = execute(t, s, afero.NewMemMapFs(), "not-a-thread", "--stdout")
	require.ErrorIs(t, err, api.ErrNoItemID)
}

// Expectation: An unknown discussion should surface as not found.
func Test_Root_NotFound_Error(t *testing.T) {
	s := newTestServer(t)

	_, _, err := execute(t, s, afero.NewMemMapFs(), "99", "--stdout")
	require.ErrorIs(t, err, api.ErrNotFound)
}

// Expectation: A second run with a cache directory should not hit the network.
func Test_Root_Cache_Success(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	first, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--cache-dir", dir)
	require.NoError(t, err)
	require.Equal(t, int32(1), s.hits.Load())

	second, _, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--cache-dir", dir)
	require.NoError(t, err)
	require.Equal(t, int32(1), s.hits.Load())
	require.Equal(t, first, second)
}

// Expectation: --verbose should log progress to stderr.
func Test_Root_Verbose_Success(t *testing.T) {
	s := newTestServer(t)

	_, stderr, err := execute(t, s, afero.NewMemMapFs(), "42", "--stdout", "--verbose")
	require.NoError(t, err)
	require.Contains(t, stderr, "flattened discussion")
}

// Expectation: View should hand the flattened discussion to the viewer.
func Test_Program_View_Success(t *testing.T) {
	s := newTestServer(t)
	var stderr bytes.Buffer
	prog := NewProgram(afero.NewMemMapFs(), nil, &stderr, config.Default(), false, s.opts()...)

	var got *discussion.Result
	prog.viewer = func(res *discussion.Result) error {
		got = res
		return nil
	}

	require.NoError(t, prog.View(context.Background(), "42", discussion.Options{}))
	require.NotNil(t, got)
	require.Equal(t, "Show HN: Flat", got.Post.Title)
	require.Len(t, got.Forest, 2)
	require.Equal(t, 1, got.Stats.Flagged)
}
