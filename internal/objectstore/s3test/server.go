// Package s3test provides an in-memory, path-style S3 REST endpoint for
// driver tests. It speaks enough of the protocol for the aws-sdk-go-v2 and
// minio-go clients: ListBuckets, ListObjectsV2, PUT, GET and HEAD of an
// object, and S3 XML errors.
//
// Usage:
//
//	fake := s3test.New("invoices")
//	srv := httptest.NewServer(fake)
//	defer srv.Close()
package s3test

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ModTime is the Last-Modified time reported for every object.
var ModTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Object is a stored payload and its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// Server is an http.Handler holding buckets in memory.
// It is safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	buckets   map[string]map[string]Object
	lastQuery url.Values
}

// New returns a Server with the given buckets already created.
func New(buckets ...string) *Server {
	s := &Server{buckets: map[string]map[string]Object{}}
	for _, b := range buckets {
		s.buckets[b] = map[string]Object{}
	}
	return s
}

// Put stores an object directly, creating the bucket if needed.
func (s *Server) Put(bucket, key string, body []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string]Object{}
	}
	s.buckets[bucket][key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
}

// Object returns the stored object at key in bucket.
func (s *Server) Object(bucket, key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.buckets[bucket][key]
	return obj, ok
}

// LastListQuery returns the query string of the most recent listing request.
func (s *Server) LastListQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	if bucket == "" {
		s.listBuckets(w)
		return
	}

	// Read before locking; the body can be large.
	var body []byte
	if r.Method == http.MethodPut {
		var err error
		if body, err = readBody(r); err != nil {
			writeError(w, r, http.StatusBadRequest, "IncompleteBody")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objs, ok := s.buckets[bucket]
	if !ok {
		writeError(w, r, http.StatusNotFound, "NoSuchBucket")
		return
	}

	switch {
	case key == "" && r.Method == http.MethodGet:
		s.lastQuery = r.URL.Query()
		list(w, bucket, objs, s.lastQuery)
	case key == "":
		writeError(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	case r.Method == http.MethodPut:
		objs[key] = Object{Body: body, ContentType: r.Header.Get("Content-Type")}
		w.Header().Set("ETag", etag(key))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet, r.Method == http.MethodHead:
		obj, ok := objs[key]
		if !ok {
			writeError(w, r, http.StatusNotFound, "NoSuchKey")
			return
		}
		h := w.Header()
		h.Set("Content-Type", obj.ContentType)
		h.Set("Content-Length", strconv.Itoa(len(obj.Body)))
		h.Set("ETag", etag(key))
		h.Set("Last-Modified", ModTime.Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(obj.Body)
		}
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func (s *Server) listBuckets(w http.ResponseWriter) {
	s.mu.Lock()
	names := make([]string, 0, len(s.buckets))
	for b := range s.buckets {
		names = append(names, b)
	}
	s.mu.Unlock()
	sort.Strings(names)

	res := bucketsResult{}
	for _, n := range names {
		res.Buckets = append(res.Buckets, bucketEntry{Name: n, CreationDate: ModTime.Format(time.RFC3339)})
	}
	writeXML(w, res)
}

// list serves ListObjectsV2. Both continuation-token and start-after are
// keys; the listing resumes after the greater of the two.
func list(w http.ResponseWriter, bucket string, objs map[string]Object, q url.Values) {
	prefix := q.Get("prefix")
	after := q.Get("start-after")
	if t := q.Get("continuation-token"); t > after {
		after = t
	}
	maxKeys := 1000
	if v := q.Get("max-keys"); v != "" {
		maxKeys, _ = strconv.Atoi(v)
	}

	var keys []string
	for k := range objs {
		if strings.HasPrefix(k, prefix) && k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := listResult{Name: bucket, Prefix: prefix, MaxKeys: maxKeys}
	if len(keys) > maxKeys {
		keys = keys[:maxKeys]
		res.IsTruncated = true
		res.NextContinuationToken = keys[len(keys)-1]
	}
	for _, k := range keys {
		res.Contents = append(res.Contents, listContent{
			Key:          k,
			Size:         len(objs[k].Body),
			ETag:         etag(k),
			LastModified: ModTime.Format("2006-01-02T15:04:05.000Z"),
		})
	}
	res.KeyCount = len(res.Contents)
	writeXML(w, res)
}

// readBody returns the request payload, decoding aws-chunked streaming
// uploads (minio-go signs PUT bodies this way over plain HTTP).
func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") &&
		!strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") {
		return raw, nil
	}
	return decodeChunked(raw)
}

// decodeChunked reads "<hex-size>[;chunk-signature=...]\r\n<data>\r\n"
// frames up to the zero-length frame. Trailers after it are ignored.
func decodeChunked(raw []byte) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	var out bytes.Buffer
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("chunk header: %w", err)
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk size %q: %w", sizeHex, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, fmt.Errorf("chunk data: %w", err)
		}
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("chunk terminator: %w", err)
		}
	}
}

func etag(key string) string {
	return `"etag-` + key + `"`
}

type bucketsResult struct {
	XMLName xml.Name      `xml:"ListAllMyBucketsResult"`
	Buckets []bucketEntry `xml:"Buckets>Bucket"`
}

type bucketEntry struct {
	Name         string `xml:"Name"`
	CreationDate string `xml:"CreationDate"`
}

type listResult struct {
	XMLName               xml.Name      `xml:"ListBucketResult"`
	Name                  string        `xml:"Name"`
	Prefix                string        `xml:"Prefix"`
	KeyCount              int           `xml:"KeyCount"`
	MaxKeys               int           `xml:"MaxKeys"`
	IsTruncated           bool          `xml:"IsTruncated"`
	NextContinuationToken string        `xml:"NextContinuationToken,omitempty"`
	Contents              []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	Size         int    `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
}

func writeXML(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/xml")
	io.WriteString(w, xml.Header)
	xml.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	io.WriteString(w, xml.Header+`<Error><Code>`+code+`</Code><Message>`+code+`</Message><RequestId>req-1</RequestId></Error>`)
}
