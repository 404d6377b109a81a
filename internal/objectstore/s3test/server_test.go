package s3test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChunked(t *testing.T) {
	raw := "5;chunk-signature=abc\r\nhello\r\n6;chunk-signature=def\r\n world\r\n0;chunk-signature=fff\r\n\r\n"
	got, err := decodeChunked([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	got, err = decodeChunked([]byte("3\r\nabc\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = decodeChunked([]byte("zz\r\nabc\r\n"))
	assert.Error(t, err)
}

func TestServer_PutStreamingBody(t *testing.T) {
	fake := New("b")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/b/k.txt", strings.NewReader("2;chunk-signature=x\r\nhi\r\n0;chunk-signature=y\r\n\r\n"))
	require.NoError(t, err)
	req.Header.Set("X-Amz-Content-Sha256", "STREAMING-AWS4-HMAC-SHA256-PAYLOAD")
	req.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	obj, ok := fake.Object("b", "k.txt")
	require.True(t, ok)
	assert.Equal(t, "hi", string(obj.Body))
	assert.Equal(t, "text/plain", obj.ContentType)
}

func TestServer_ListResumesAfterGreaterKey(t *testing.T) {
	fake := New("b")
	for _, k := range []string{"a", "b", "c", "d"} {
		fake.Put("b", k, []byte(k), "")
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/b?list-type=2&start-after=a&continuation-token=c")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), "<Key>d</Key>")
	assert.NotContains(t, string(body), "<Key>b</Key>")
	assert.Equal(t, "a", fake.LastListQuery().Get("start-after"))
}

func TestServer_Errors(t *testing.T) {
	srv := httptest.NewServer(New("b"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope/k")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "<Code>NoSuchBucket</Code>")

	resp, err = http.Get(srv.URL + "/b/missing")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "<Code>NoSuchKey</Code>")
}
