package asset

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// The client used for fetching remote resources.
var httpClient = &http.Client{Timeout: 60 * time.Second}

// The Resource class wraps a streamable file, remote or embedded (data URI) resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource. Embedded resources report a truncated URI.
func (r *Resource) Path() string {
	if r.IsEmbedded() {
		return "data:" + strings.SplitN(r.url.Opaque, ",", 2)[0]
	}
	return r.url.String()
}

// Return the lowercase file extension (including the leading dot) of this resource.
func (r *Resource) Ext() string {
	if r.IsEmbedded() {
		return ""
	}
	return strings.ToLower(path.Ext(r.url.Path))
}

// Return the remote path to this resource. If this is a remote resource then
// this method returns the base path (without leading /) of the remote URL.
// Otherwise, this method returns the same value as Path().
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme == "http" || r.url.Scheme == "https"
}

// Returns true if the Resource payload is embedded in a data URI.
func (r *Resource) IsEmbedded() bool {
	return r.url.Scheme == "data"
}

// Read the entire resource and close it.
func (r *Resource) ReadAll() ([]byte, error) {
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("resource: could not read '%s': %w", r.Path(), err)
	}
	return data, nil
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// This function can handle http/https URLs by delegating to the net/http package
// and base64 data URIs as used by glTF buffers and images. The caller must make
// sure to close the returned io.ReadCloser to prevent mem leaks.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	if pathToResource == "" {
		return nil, fmt.Errorf("resource: empty resource path")
	}

	// Data URIs may be large and contain characters that url.Parse rejects
	if strings.HasPrefix(pathToResource, "data:") {
		return newDataResource(pathToResource)
	}

	// Replace forward slashes with backslaces and try parsing as a URL
	url, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if url.Scheme == "" && relTo != nil && !relTo.IsEmbedded() {
		relPath := url.Path
		url, _ = url.Parse(relTo.url.String())
		prefix := url.Path
		if url.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
		}
		url.Path = filepath.ToSlash(filepath.Dir(prefix)) + "/" + relPath
	}

	var reader io.ReadCloser
	switch url.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(url.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := httpClient.Get(url.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", url.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", url.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", url.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        url,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	url, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        url,
	}
}

// Decode a data URI of the form data:[<mediatype>][;base64],<data>.
func newDataResource(uri string) (*Resource, error) {
	header, payload, found := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !found {
		return nil, fmt.Errorf("resource: malformed data URI")
	}

	var data []byte
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("resource: could not decode data URI: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("resource: could not decode data URI: %w", err)
		}
		data = []byte(unescaped)
	}

	return &Resource{
		ReadCloser: io.NopCloser(bytes.NewReader(data)),
		url:        &url.URL{Scheme: "data", Opaque: header + ","},
	}, nil
}
