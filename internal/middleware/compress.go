package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

const (
	acceptEncodingHeader  = "Accept-Encoding"
	contentEncodingHeader = "Content-Encoding"
	contentLengthHeader   = "Content-Length"
	contentTypeHeader     = "Content-Type"
	gzipEncoding          = "gzip"
)

var compressibleTypes = []string{
	"application/json",
	"text/plain",
	"text/html",
}

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// gzipResponseWriter решает, сжимать ли ответ, при отправке заголовка:
// сжимаются только текстовые форматы.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if isCompressible(w.Header().Get(contentTypeHeader)) {
		w.Header().Set(contentEncodingHeader, gzipEncoding)
		w.Header().Del(contentLengthHeader)

		gz, _ := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(w.ResponseWriter)
		w.gz = gz
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.gz == nil {
		return w.ResponseWriter.Write(p)
	}

	return w.gz.Write(p)
}

func (w *gzipResponseWriter) close() {
	if w.gz == nil {
		return
	}

	_ = w.gz.Close()
	gzipWriterPool.Put(w.gz)
	w.gz = nil
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}

	return false
}

// ResponseEncoder сжимает текстовые ответы, если клиент принимает gzip.
func ResponseEncoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get(acceptEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.close()

		h.ServeHTTP(gw, r)
	})
}

// RequestDecoder распаковывает тело запроса, сжатое gzip.
// Тело, которое не удалось распаковать, отклоняется со статусом 400.
func RequestDecoder(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get(contentEncodingHeader), gzipEncoding) {
			h.ServeHTTP(w, r)
			return
		}

		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "failed to decompress request", http.StatusBadRequest)
			return
		}
		defer func() {
			_ = gz.Close()
		}()

		r.Body = io.NopCloser(gz)
		r.Header.Del(contentEncodingHeader)
		r.Header.Del(contentLengthHeader)
		r.ContentLength = -1

		h.ServeHTTP(w, r)
	})
}
